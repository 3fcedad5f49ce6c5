package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"recsort/internal/config"
	"recsort/internal/organizer"
)

func newClusterCommand(ctx *commandContext) *cobra.Command {
	defaults := config.Default()
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "cluster <dir>",
		Short: "Group the images of a folder into year or month folders",
		Long: "Cluster the files directly inside <dir> into events by capture time and move\n" +
			"each event into the year (or year/month) folder of its first image.\n" +
			"Files without a readable capture time stay in place.\n\n" +
			"The run lock is taken on the parent of <dir>, so clustering dest/JPG\n" +
			"fails fast while a sort into dest is running.",
		Args: cobra.ExactArgs(1),
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

			org, err := organizer.New(&runCfg, organizer.WithLogger(logger), organizer.WithObserver(organizer.NopObserver{}))
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			report, err := org.ClusterDirectory(signalCtx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Buckets) == 0 {
				fmt.Fprintln(out, "No dated files to cluster")
			} else {
				rows := make([][]string, 0, len(report.Buckets))
				for _, b := range report.Buckets {
					rows = append(rows, []string{b.Key, fmt.Sprintf("%d", b.Files)})
				}
				fmt.Fprintln(out, renderTable([]string{"Bucket", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
			}
			fmt.Fprintf(out, "Clustered %d files (%d left undated)\n", report.Clustered, report.Undated)
			printFailures(cmd, report.Failures)
			if n := len(report.Failures); n > 0 {
				return fmt.Errorf("completed with %d failures", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.splitMonths, "split-months", "m", false, "Split year folders into months")
	cmd.Flags().IntVarP(&opts.minDelta, "min-event-delta", "d", defaults.Sort.MinEventDeltaDays, "Minimum gap in days between two events")
	return cmd
}
