package plan

import (
	"fmt"
	"time"

	"github.com/hay-kot/criterio"
)

// Validate checks the plan's structure: every step must have exactly one
// discriminator, delays must parse as durations, and group modes must be
// known. Errors are reported per field path (e.g. steps[1].steps[0].delay).
func (p *Plan) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if p.Name == "" {
		errs = errs.Append("name", fmt.Errorf("plan name is required"))
	}

	errs = validateSteps(errs, "steps", p.Steps)
	return errs.ToError()
}

func validateSteps(errs criterio.FieldErrorsBuilder, prefix string, steps []Step) criterio.FieldErrorsBuilder {
	for i, s := range steps {
		errs = validateStep(errs, fmt.Sprintf("%s[%d]", prefix, i), s)
	}
	return errs
}

func validateStep(errs criterio.FieldErrorsBuilder, field string, s Step) criterio.FieldErrorsBuilder {
	kinds := 0
	for _, set := range []bool{s.Print != "", s.Delay != "", s.Shell != "", s.Set != nil, s.Group != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		errs = errs.Append(field, fmt.Errorf("step must have exactly one of print, delay, shell, set, group (got %d)", kinds))
		return errs
	}

	if s.Delay != "" {
		if _, err := time.ParseDuration(s.Delay); err != nil {
			errs = errs.Append(field+".delay", fmt.Errorf("invalid duration %q: %w", s.Delay, err))
		}
	}

	if s.Set != nil && s.Set.Key == "" {
		errs = errs.Append(field+".set.key", fmt.Errorf("set requires a key"))
	}

	if s.Shell == "" {
		if s.Dir != "" {
			errs = errs.Append(field+".dir", fmt.Errorf("dir is only valid on shell steps"))
		}
		if s.Capture != "" {
			errs = errs.Append(field+".capture", fmt.Errorf("capture is only valid on shell steps"))
		}
	}

	if s.Group != "" {
		if s.Group != GroupConcurrent && s.Group != GroupSequential {
			errs = errs.Append(field+".group", fmt.Errorf("unknown group mode %q (want %s or %s)", s.Group, GroupConcurrent, GroupSequential))
		}
		errs = validateSteps(errs, field+".steps", s.Steps)
	} else if len(s.Steps) > 0 {
		errs = errs.Append(field+".steps", fmt.Errorf("steps are only valid on group steps"))
	}

	return errs
}
