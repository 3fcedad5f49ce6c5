package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"recsort/internal/config"
	"recsort/internal/logging"
	"recsort/internal/partition"
)

func newPartitionCommand(ctx *commandContext) *cobra.Command {
	defaults := config.Default()
	var limit int

	cmd := &cobra.Command{
		Use:   "partition <dir>",
		Short: "Split every folder under <dir> so none holds more than N files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-per-dir") {
				limit = cfg.Sort.MaxFilesPerDirectory
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "partition")

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			result, err := partition.Partition(signalCtx, args[0], limit, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Split %d directories, moved %d files\n", result.DirectoriesSplit, result.FilesMoved)
			if len(result.Failures) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(result.Failures))
			for _, f := range result.Failures {
				rows = append(rows, []string{f.Op, f.Path, f.Err.Error()})
			}
			fmt.Fprintln(out, renderTable([]string{"Operation", "Path", "Error"}, rows, nil))
			return fmt.Errorf("completed with %d failures", len(result.Failures))
		},
	}

	cmd.Flags().IntVarP(&limit, "max-per-dir", "n", defaults.Sort.MaxFilesPerDirectory, "Maximum number of files per directory")
	return cmd
}
