// Package plan handles loading, validation, and construction of declarative
// execution plans. A plan file describes a tree of commands in YAML; Build
// turns it into a runnable command tree backed by a shared store.
package plan

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/convoy/pkg/cmds"
	"github.com/hay-kot/convoy/pkg/command"
)

// Group modes accepted by the `group` step.
const (
	GroupConcurrent = "concurrent"
	GroupSequential = "sequential"
)

// Plan is a named, declarative execution plan. Top-level steps always run
// sequentially; concurrency is introduced with `group: concurrent` steps.
type Plan struct {
	Name  string         `yaml:"name"`
	Vars  map[string]any `yaml:"vars"`
	Steps []Step         `yaml:"steps"`
}

// Step is one node of the plan tree. Exactly one of the discriminator fields
// (print, delay, shell, set, group) must be populated.
type Step struct {
	Print string `yaml:"print,omitempty"`
	Delay string `yaml:"delay,omitempty"`

	Shell   string `yaml:"shell,omitempty"`
	Dir     string `yaml:"dir,omitempty"`     // shell only
	Capture string `yaml:"capture,omitempty"` // shell only

	Set *SetStep `yaml:"set,omitempty"`

	Group string `yaml:"group,omitempty"` // concurrent or sequential
	Steps []Step `yaml:"steps,omitempty"` // group only
}

// SetStep writes a value into the shared store.
type SetStep struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse unmarshals and validates plan YAML.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &p, nil
}

// Build constructs the runnable command tree: a root sequence over the
// top-level steps, with a fresh store seeded from the plan's vars attached.
// Print output goes to out.
func (p *Plan) Build(out io.Writer) (*command.Sequence, *command.Store) {
	store := command.NewStore()
	for k, v := range p.Vars {
		store.Set(k, v)
	}

	root := command.NewSequence(buildSteps(p.Steps, out)...)
	root.SetStore(store)
	return root, store
}

func buildSteps(steps []Step, out io.Writer) []command.Command {
	built := make([]command.Command, 0, len(steps))
	for _, s := range steps {
		built = append(built, buildStep(s, out))
	}
	return built
}

func buildStep(s Step, out io.Writer) command.Command {
	switch {
	case s.Print != "":
		return cmds.NewPrint(out, s.Print)

	case s.Delay != "":
		// Validate guarantees the duration parses.
		d, _ := time.ParseDuration(s.Delay)
		return cmds.NewDelay(d)

	case s.Shell != "":
		sh := cmds.NewShell(s.Dir, s.Shell)
		if s.Capture != "" {
			sh.SetCapture(s.Capture)
		}
		return sh

	case s.Set != nil:
		return cmds.NewSet(s.Set.Key, s.Set.Value)

	case s.Group == GroupConcurrent:
		return command.NewGroup(buildSteps(s.Steps, out)...)

	default: // sequential group; Validate rejects anything else
		return command.NewSequence(buildSteps(s.Steps, out)...)
	}
}
