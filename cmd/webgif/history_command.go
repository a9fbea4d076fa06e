package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"webgif/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent capture runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled (history.enabled = false)")
				return nil
			}

			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Number of runs to show")
	return cmd
}

func renderHistory(runs []history.Run, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		elapsed := "-"
		if d := run.Elapsed(); d > 0 {
			elapsed = d.Round(10 * time.Millisecond).String()
		}
		status := string(run.Status)
		if run.ErrorKind != "" {
			status += " (" + run.ErrorKind + ")"
		}
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			status,
			run.OutputType,
			strconv.Itoa(run.FramesCaptured) + "/" + strconv.Itoa(run.FrameCount),
			humanize.Bytes(uint64(max(run.Bytes, 0))),
			elapsed,
			run.URL,
		})
	}
	return renderTable(tableSpec{
		headers:    []string{"Run", "Started", "Status", "Type", "Frames", "Size", "Elapsed", "URL"},
		rows:       rows,
		rightAlign: []int{4, 5, 6},
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
