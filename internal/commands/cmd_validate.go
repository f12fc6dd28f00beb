package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/convoy/internal/core/plan"
)

type ValidateCmd struct {
	flags *Flags
}

// NewValidateCmd creates a new validate command
func NewValidateCmd(flags *Flags) *ValidateCmd {
	return &ValidateCmd{flags: flags}
}

// Register adds the validate command to the application
func (cmd *ValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "validate",
		Usage:     "Check plan files without executing them",
		UsageText: "convoy validate <plan.yml|glob>...",
		Action:    cmd.run,
	})

	return app
}

func (cmd *ValidateCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one plan file or glob is required")
	}

	paths, err := expandGlobs(c.Args().Slice())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	failed := 0

	for _, path := range paths {
		_, err := plan.Load(path)
		if err == nil {
			fmt.Fprintf(out, "ok   %s\n", path)
			continue
		}

		failed++
		fmt.Fprintf(out, "FAIL %s\n", path)

		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				fmt.Fprintf(out, "     %s: %s\n", fe.Field, fe.Err)
			}
			continue
		}
		fmt.Fprintf(out, "     %s\n", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d plan file(s) invalid", failed, len(paths))
	}
	return nil
}
