package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"recsort/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(cmd, func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						run.Status,
						strconv.Itoa(run.Copied),
						strconv.Itoa(run.Failures),
						run.Source,
						run.Destination,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Status", "Copied", "Failures", "Source", "Destination"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var errorsOnly bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its file entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(cmd, func(store *journal.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				entries, err := store.Entries(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				duration := "-"
				if run.Finished() {
					duration = run.Duration().Round(time.Millisecond).String()
				}
				summary := [][]string{
					{"Run", run.ID},
					{"Status", run.Status},
					{"Started", run.StartedAt.Local().Format(time.RFC3339)},
					{"Finished", yesNo(run.Finished())},
					{"Duration", duration},
					{"Source", run.Source},
					{"Destination", run.Destination},
					{"Filename policy", run.Policy},
					{"Copied", strconv.Itoa(run.Copied)},
					{"Clustered", strconv.Itoa(run.Clustered)},
					{"Partition moves", strconv.Itoa(run.Moved)},
					{"Failures", strconv.Itoa(run.Failures)},
				}
				fmt.Fprintln(out, renderFields(summary))

				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					if errorsOnly && e.Error == "" {
						continue
					}
					rows = append(rows, []string{strconv.Itoa(e.Seq), string(e.Phase), e.Source, e.Destination, e.Error})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No entries")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Phase", "Source", "Destination", "Error"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&errorsOnly, "errors", false, "Only list entries that failed")
	return cmd
}

// withJournal opens the run journal read-side. A missing journal file is
// reported as an empty history rather than created.
func (c *commandContext) withJournal(cmd *cobra.Command, fn func(*journal.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	path := cfg.JournalPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}
	store, err := journal.Open(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
