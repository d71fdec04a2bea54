package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bookminify/internal/history"
	"bookminify/internal/logging"
	"bookminify/internal/staging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clean working directories",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheCleanCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces left in the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cacheDir := strings.TrimSpace(cfg.Paths.CacheDir)

			dirs, err := staging.ListDirectories(cacheDir)
			if err != nil {
				return fmt.Errorf("list cache directories: %w", err)
			}
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No workspaces found")
				return nil
			}

			fmt.Fprintf(out, "Cache directory: %s\n\n", cacheDir)
			var total int64
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				total += dir.Size
				rows = append(rows, []string{
					strings.TrimPrefix(dir.Group, staging.GroupPrefix),
					dir.Name,
					formatAge(dir.ModTime),
					formatBytes(dir.Size),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Folder", "Workspace", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				[]string{"", fmt.Sprintf("%d workspaces", len(dirs)), "", formatBytes(total)},
			))
			return nil
		},
	}
}

func newCacheCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var orphaned bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove workspaces left behind by interrupted runs",
		Long: `Remove workspaces left behind by interrupted runs.

By default, removes workspaces older than --max-age. With --orphaned, removes
every workspace older than --max-age whose run is not currently marked
running in the history ledger. Running rows older than --max-age are marked
abandoned first. Younger workspaces are always kept, since a run that could
not open the ledger has no running row.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var result staging.CleanStaleResult
			if orphaned {
				store, err := history.Open(cfg.HistoryPath())
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer store.Close()

				abandoned, err := store.MarkAbandoned(cmd.Context(), time.Now().Add(-maxAge))
				if err != nil {
					return err
				}
				if abandoned > 0 {
					logger.Info("marked abandoned runs", logging.Int64("count", abandoned))
				}
				ids, err := store.ActiveRunIDs(cmd.Context())
				if err != nil {
					return err
				}
				active := make(map[string]struct{}, len(ids))
				for _, id := range ids {
					active[staging.ShortRunID(id)] = struct{}{}
				}
				result = staging.CleanOrphaned(cmd.Context(), cfg.Paths.CacheDir, active, maxAge, logger)
			} else {
				result = staging.CleanStale(cmd.Context(), cfg.Paths.CacheDir, maxAge, logger)
			}

			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			for _, failure := range result.Errors {
				fmt.Fprintf(out, "Failed to remove %s: %v\n", failure.Path, failure.Error)
			}
			if len(result.Removed) == 0 && len(result.Errors) == 0 {
				fmt.Fprintln(out, "Nothing to clean")
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d workspaces could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 24*time.Hour, "Minimum age of workspaces to remove")
	cmd.Flags().BoolVar(&orphaned, "orphaned", false, "Remove workspaces of runs that are no longer active")
	return cmd
}
