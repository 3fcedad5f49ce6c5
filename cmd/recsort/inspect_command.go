package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recsort/internal/metadata"
)

type inspectResult struct {
	Path       string            `json:"path"`
	Candidates map[string]string `json:"candidates"`
	Resolved   *time.Time        `json:"resolved,omitempty"`
	Field      string            `json:"field,omitempty"`
	Malformed  []string          `json:"malformed,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func newInspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "inspect <file>...",
		Short:       "Show capture-time candidates and the resolved timestamp of files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := metadata.NewExtractor()
			results := make([]inspectResult, 0, len(args))
			for _, path := range args {
				results = append(results, inspectFile(extractor, path))
			}
			if asJSON {
				return writeJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printInspectResult(cmd, res)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func inspectFile(extractor *metadata.Extractor, path string) inspectResult {
	res := inspectResult{Path: path}
	candidates, err := extractor.Candidates(path)
	if err != nil {
		res.Error = err.Error()
	}
	res.Candidates = map[string]string(candidates)

	resolution := metadata.Resolve(candidates)
	if resolution.OK {
		ts := resolution.Time
		res.Resolved = &ts
		res.Field = resolution.Field
	}
	res.Malformed = resolution.Malformed
	return res
}

func printInspectResult(cmd *cobra.Command, res inspectResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Path)
	if res.Error != "" {
		fmt.Fprintf(out, "  metadata: %s\n", res.Error)
	}

	malformed := make(map[string]struct{}, len(res.Malformed))
	for _, name := range res.Malformed {
		malformed[name] = struct{}{}
	}
	rows := make([][]string, 0, len(metadata.Fields()))
	for _, field := range metadata.Fields() {
		raw, ok := res.Candidates[field]
		status := "absent"
		switch {
		case !ok:
		case hasKey(malformed, field):
			status = "malformed"
		default:
			status = "ok"
		}
		rows = append(rows, []string{field, strings.TrimSpace(raw), status})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value", "Status"}, rows, nil))

	if res.Resolved == nil {
		fmt.Fprintln(out, "Resolved: none (file stays undated)")
		return
	}
	fmt.Fprintf(out, "Resolved: %s (from %s)\n", res.Resolved.Format(metadata.DateLayout), res.Field)
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
