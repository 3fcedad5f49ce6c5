package preflight

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"recsort/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the source, destination and state directories for a run.
// Empty source or destination paths are skipped so "config validate" can
// reuse it for the state directory alone.
func RunAll(cfg *config.Config, source, destination string) []Result {
	var results []Result

	if source != "" {
		results = append(results, CheckSourceDirectory("Source directory", source))
	}
	if destination != "" {
		results = append(results, CheckDirectoryAccess("Destination directory", destination))
	}
	if source != "" && destination != "" && nested(source, destination) {
		results = append(results, Result{
			Name:   "Destination placement",
			Detail: fmt.Sprintf("%s (error: destination is inside the source tree)", destination),
		})
	}
	if cfg != nil {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	return results
}

// Err combines every failed result into one error, or nil when all passed.
func Err(results []Result) error {
	var err error
	for _, r := range results {
		if r.Passed {
			continue
		}
		err = multierr.Append(err, fmt.Errorf("%s: %s", r.Name, r.Detail))
	}
	return err
}

// nested reports whether destination equals or lives below source.
// Copying into the tree being walked would re-copy our own output.
func nested(source, destination string) bool {
	src, err := filepath.Abs(source)
	if err != nil {
		return false
	}
	dst, err := filepath.Abs(destination)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(src, dst)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
