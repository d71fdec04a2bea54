package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bookminify/internal/config"
	"bookminify/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var status string
	var archivePath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded minify runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			opts := history.ListOptions{Limit: limit, Status: strings.TrimSpace(status)}
			if archivePath = strings.TrimSpace(archivePath); archivePath != "" {
				expanded, err := config.ExpandPath(archivePath)
				if err != nil {
					return err
				}
				if abs, err := filepath.Abs(expanded); err == nil {
					expanded = abs
				}
				opts.Archive = expanded
			}

			runs, err := store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			colors := newPalette(out)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, historyRow(run, colors))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Archive", "Status", "Stage", "Pages", "Old", "New", "Saved", "Took"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
				nil,
			))

			totals, err := store.Totals(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Total: %d runs, %d accepted, %d rejected, %d failed, %s saved\n",
				totals.Runs, totals.Accepted, totals.Rejected, totals.Failed, formatBytes(totals.SavedBytes))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().StringVar(&status, "status", "", "Only show runs with this status (accepted, rejected, failed, running, abandoned)")
	cmd.Flags().StringVar(&archivePath, "archive", "", "Only show runs for this archive")
	return cmd
}

func historyRow(run history.Run, colors palette) []string {
	pages := "-"
	if run.Entries > 0 {
		pages = fmt.Sprintf("%d/%d", run.Converted, run.Entries)
	}
	oldSize, newSize, saved := "-", "-", "-"
	if run.OldSize > 0 {
		oldSize = formatBytes(run.OldSize)
	}
	if run.NewSize > 0 {
		newSize = formatBytes(run.NewSize)
		saved = formatPercent(run.ReductionPercent)
	}
	stage := run.Stage
	if run.Status == history.StatusFailed && run.ErrorKind != "" {
		stage = stage + " (" + run.ErrorKind + ")"
	}
	return []string{
		formatAge(run.StartedAt),
		filepath.Base(run.ArchivePath),
		colors.status(run.Status),
		stage,
		pages,
		oldSize,
		newSize,
		saved,
		formatDuration(run.Duration),
	}
}
