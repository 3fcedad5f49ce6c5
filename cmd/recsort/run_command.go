package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"recsort/internal/config"
	"recsort/internal/journal"
	"recsort/internal/logging"
	"recsort/internal/organizer"
	"recsort/internal/services"
)

type runOptions struct {
	maxPerDir    int
	splitMonths  bool
	keepFilename bool
	dateTimeName bool
	minDelta     int
	json         bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	defaults := config.Default()
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <source> <destination>",
		Short: "Sort a recovery dump into the destination tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg := applyRunFlags(cmd, *cfg, opts)

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			orgOpts := []organizer.Option{
				organizer.WithLogger(logger),
				organizer.WithObserver(newObserver(cmd.ErrOrStderr(), logger)),
			}
			if runCfg.Journal.Enabled {
				store, err := journal.Open(runCfg.JournalPath())
				if err != nil {
					logging.WarnWithContext(logger, "run journal unavailable", "journal_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
						logging.String(logging.FieldImpact, "this run will not appear in history"),
					)
				} else {
					defer store.Close()
					orgOpts = append(orgOpts, organizer.WithRecorder(store))
				}
			}

			org, err := organizer.New(&runCfg, orgOpts...)
			if err != nil {
				return err
			}

			destination := args[1]
			if err := os.MkdirAll(destination, 0o755); err != nil {
				return fmt.Errorf("create destination %q: %w", destination, err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			report, runErr := org.Run(signalCtx, args[0], destination)
			if services.IsFatal(runErr) || (runErr != nil && report.RunID == "") {
				return runErr
			}
			if opts.json {
				if err := writeJSON(cmd, newRunSummary(report)); err != nil {
					return err
				}
			} else {
				printRunReport(cmd, report)
			}
			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Run %s canceled; re-run to sort the remaining files\n", report.RunID)
				}
				return runErr
			}
			if n := len(report.Failures); n > 0 {
				return fmt.Errorf("completed with %d failures", n)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.maxPerDir, "max-per-dir", "n", defaults.Sort.MaxFilesPerDirectory, "Maximum number of files per directory")
	cmd.Flags().BoolVarP(&opts.splitMonths, "split-months", "m", false, "Split year folders into months")
	cmd.Flags().BoolVarP(&opts.keepFilename, "keep-filename", "k", false, "Keep original filenames")
	cmd.Flags().BoolVarP(&opts.dateTimeName, "date-time-filename", "j", false, "Name images after their capture time")
	cmd.Flags().IntVarP(&opts.minDelta, "min-event-delta", "d", defaults.Sort.MinEventDeltaDays, "Minimum gap in days between two events")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the run summary as JSON")
	cmd.MarkFlagsMutuallyExclusive("keep-filename", "date-time-filename")
	return cmd
}

// applyRunFlags overlays explicitly set flags on a copy of the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg config.Config, opts runOptions) config.Config {
	flags := cmd.Flags()
	if flags.Changed("max-per-dir") {
		cfg.Sort.MaxFilesPerDirectory = opts.maxPerDir
	}
	if flags.Changed("min-event-delta") {
		cfg.Sort.MinEventDeltaDays = opts.minDelta
	}
	if flags.Changed("split-months") {
		cfg.Sort.SplitByMonth = opts.splitMonths
	}
	switch {
	case opts.keepFilename:
		cfg.Sort.FilenamePolicy = config.PolicyKeepOriginal
	case opts.dateTimeName:
		cfg.Sort.FilenamePolicy = config.PolicyDateTime
	}
	return cfg
}

type runSummary struct {
	RunID       string           `json:"run_id"`
	Source      string           `json:"source"`
	Destination string           `json:"destination"`
	Policy      string           `json:"policy"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Scanned     int              `json:"scanned"`
	Copied      int              `json:"copied"`
	Dated       int              `json:"dated"`
	Undated     int              `json:"undated"`
	Clustered   int              `json:"clustered"`
	Split       int              `json:"directories_split"`
	Moved       int              `json:"partition_moves"`
	Buckets     []bucketSummary  `json:"buckets"`
	Failures    []failureSummary `json:"failures"`
}

type bucketSummary struct {
	Root  string `json:"root"`
	Key   string `json:"key"`
	Files int    `json:"files"`
}

type failureSummary struct {
	Phase string `json:"phase"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

func newRunSummary(report *organizer.Report) runSummary {
	summary := runSummary{
		RunID:       report.RunID,
		Source:      report.Source,
		Destination: report.Destination,
		Policy:      report.Policy,
		StartedAt:   report.StartedAt.UTC(),
		FinishedAt:  report.FinishedAt.UTC(),
		Scanned:     report.Scanned,
		Copied:      report.Copied,
		Dated:       report.Dated,
		Undated:     report.Undated,
		Clustered:   report.Clustered,
		Split:       report.Partition.DirectoriesSplit,
		Moved:       report.Partition.FilesMoved,
		Buckets:     make([]bucketSummary, 0, len(report.Buckets)),
		Failures:    make([]failureSummary, 0, len(report.Failures)),
	}
	for _, b := range report.Buckets {
		summary.Buckets = append(summary.Buckets, bucketSummary(b))
	}
	for _, f := range report.Failures {
		summary.Failures = append(summary.Failures, failureSummary{Phase: f.Phase, Path: f.Path, Error: f.Err.Error()})
	}
	return summary
}

func printRunReport(cmd *cobra.Command, report *organizer.Report) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Run", report.RunID},
		{"Source", report.Source},
		{"Destination", report.Destination},
		{"Filename policy", report.Policy},
		{"Files scanned", strconv.Itoa(report.Scanned)},
		{"Files copied", strconv.Itoa(report.Copied)},
		{"Images dated", strconv.Itoa(report.Dated)},
		{"Images undated", strconv.Itoa(report.Undated)},
		{"Images clustered", strconv.Itoa(report.Clustered)},
		{"Directories split", strconv.Itoa(report.Partition.DirectoriesSplit)},
		{"Partition moves", strconv.Itoa(report.Partition.FilesMoved)},
		{"Elapsed", report.Duration().Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderFields(rows))
	printFailures(cmd, report.Failures)
}

func printFailures(cmd *cobra.Command, failures []organizer.Failure) {
	if len(failures) == 0 {
		return
	}
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{f.Phase, f.Path, f.Err.Error()})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Phase", "Path", "Error"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))
}
