package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"webgif/internal/framestore"
	"webgif/internal/history"
	"webgif/internal/logging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var historyOlderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove work directories left behind by failed or interrupted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			maxAge := olderThan
			if !cmd.Flags().Changed("older-than") {
				maxAge = time.Duration(cfg.Paths.WorkRetentionHours) * time.Hour
			}

			out := cmd.OutOrStdout()
			result := framestore.CleanStale(cmd.Context(), cfg.Paths.WorkDir, maxAge, logger)
			fmt.Fprintf(out, "Removed %d work %s older than %s from %s\n",
				len(result.Removed), pluralize(len(result.Removed), "directory", "directories"),
				maxAge, cfg.Paths.WorkDir)
			for _, path := range result.Removed {
				fmt.Fprintf(out, "  %s\n", path)
			}
			if result.Kept > 0 {
				fmt.Fprintf(out, "Kept %d recent %s\n", result.Kept, pluralize(result.Kept, "directory", "directories"))
			}

			if historyOlderThan > 0 && cfg.History.Enabled {
				store, err := history.Open(cfg.Paths.HistoryDB)
				if err != nil {
					return err
				}
				defer store.Close()
				cutoff := time.Now().Add(-historyOlderThan)
				pruned, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d history %s started before %s\n",
					pruned, pluralize(int(pruned), "entry", "entries"), humanize.Time(cutoff))
			}

			if len(result.Errors) > 0 {
				for _, cleanupErr := range result.Errors {
					logger.Warn("work directory not removed",
						logging.String("path", cleanupErr.Path),
						logging.Error(cleanupErr.Error),
					)
				}
				return fmt.Errorf("%d work %s could not be removed", len(result.Errors),
					pluralize(len(result.Errors), "directory", "directories"))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Remove work directories older than this (default paths.work_retention_hours)")
	cmd.Flags().DurationVar(&historyOlderThan, "history-older-than", 0, "Also prune finished history entries older than this")
	return cmd
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
