package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/convoy/internal/core/logging"
	"github.com/hay-kot/convoy/internal/core/plan"
)

type RunCmd struct {
	flags *Flags

	// flags
	timeout time.Duration
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Execute plan files",
		UsageText: "convoy run [--timeout duration] <plan.yml|glob>...",
		Description: `Loads each matching plan file and executes it to completion, in order.

Patterns support doublestar globs, e.g. 'plans/**/*.yml'. A plan whose
commands never complete would hang forever; use --timeout to bound it.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "abort a plan that has not completed after this long (0 = no limit)",
				Destination: &cmd.timeout,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one plan file or glob is required")
	}

	paths, err := expandGlobs(c.Args().Slice())
	if err != nil {
		return err
	}

	out := c.Root().Writer

	for _, path := range paths {
		if err := cmd.runPlan(ctx, path, out); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *RunCmd) runPlan(ctx context.Context, path string, out io.Writer) error {
	log := logging.Component("run")

	p, err := plan.Load(path)
	if err != nil {
		return err
	}

	root, _ := p.Build(out)

	done := make(chan struct{})
	root.SetOnComplete(func() { close(done) })

	log.Info().Str("plan", p.Name).Str("path", path).Msg("plan started")
	start := time.Now()
	root.Execute()

	var timeout <-chan time.Time
	if cmd.timeout > 0 {
		t := time.NewTimer(cmd.timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-done:
		log.Info().Str("plan", p.Name).Dur("elapsed", time.Since(start)).Msg("plan complete")
		return nil
	case <-timeout:
		root.Cancel()
		return fmt.Errorf("plan %q timed out after %s", p.Name, cmd.timeout)
	case <-ctx.Done():
		root.Cancel()
		return ctx.Err()
	}
}
