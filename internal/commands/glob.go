package commands

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// expandGlobs resolves plan file patterns (literal paths or doublestar globs
// like plans/**/*.yml) into a sorted, de-duplicated path list. A pattern that
// matches nothing is an error: a typo'd plan path should not silently run
// zero plans.
func expandGlobs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no plan files match %q", pattern)
		}
		paths = append(paths, matches...)
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}
