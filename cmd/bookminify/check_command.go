package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bookminify/internal/deps"
	"bookminify/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colors := newPalette(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "missing"
				}
				rows = append(rows, []string{r.Name, colors.status(state), r.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
				nil,
			))

			capability := preflight.ProbeConverter(cfg)
			fmt.Fprintf(out, "Conversion: %s\n", capability.Summary())
			fmt.Fprintf(out, "Archive engine: %s\n", cfg.Archive.Engine)
			fmt.Fprintf(out, "History: %s\n", cfg.HistoryPath())
			for _, missing := range deps.MissingRequired(preflight.CheckSystemDeps(cmd.Context(), cfg)) {
				fmt.Fprintln(out, missing.InstallHint())
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New(pluralChecks(len(failed)) + " failed")
			}
			return nil
		},
	}
}

func pluralChecks(n int) string {
	if n == 1 {
		return "1 check"
	}
	return fmt.Sprintf("%d checks", n)
}
