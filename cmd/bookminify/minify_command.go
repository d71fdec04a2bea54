package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bookminify/internal/archive"
	"bookminify/internal/config"
	"bookminify/internal/fileutil"
	"bookminify/internal/history"
	"bookminify/internal/imageconv"
	"bookminify/internal/logging"
	"bookminify/internal/minify"
	"bookminify/internal/preflight"
	"bookminify/internal/runlock"
	"bookminify/internal/services"
)

func newMinifyCommand(ctx *commandContext) *cobra.Command {
	var replace bool
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "minify <archive>",
		Short: "Re-encode the images inside one archive",
		Long: `Re-encode the images inside one archive.

The archive is extracted into the cache directory, each image is copied or
re-encoded by size, and the result is repacked as a zip. The new archive is
kept only if both page checks pass and it is at least gate.useful_percent
smaller than the original.

Without --replace the new archive stays in the cache directory and the
original is never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			target, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve archive path: %w", err)
			}
			if abs, absErr := filepath.Abs(target); absErr == nil {
				target = abs
			}

			lock, err := runlock.Acquire(cfg.LockDir(), target)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					logger.Warn("release archive lock", logging.Error(err))
				}
			}()

			job := minifyJob{
				cfg:      cfg,
				logger:   logger,
				replace:  replace,
				progress: !noProgress && isTerminal(cmd.ErrOrStderr()),
				stderr:   cmd.ErrOrStderr(),
			}
			result, err := job.run(cmd.Context(), target)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), result)
			if result.report.Status == minify.StatusFailed {
				return result.report.Err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the original archive when the new one is accepted")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

type minifyJob struct {
	cfg      *config.Config
	logger   *slog.Logger
	replace  bool
	progress bool
	stderr   io.Writer

	// newServices overrides engine construction in tests.
	newServices func(cfg *config.Config) (archive.Service, imageconv.Converter, error)
}

type minifyResult struct {
	report      minify.Report
	replacedAt  string
	historyNote string
}

func (j minifyJob) engines() (archive.Service, imageconv.Converter, error) {
	if j.newServices != nil {
		return j.newServices(j.cfg)
	}
	archives, err := archive.New(j.cfg)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "startup", "archive engine", "", err)
	}
	converter, err := imageconv.New(j.cfg)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "startup", "conversion engine", "", err)
	}
	return archives, converter, nil
}

func (j minifyJob) run(ctx context.Context, target string) (minifyResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	archives, converter, err := j.engines()
	if err != nil {
		return minifyResult{}, err
	}
	capability := preflight.ProbeConverter(j.cfg)

	var result minifyResult
	store, err := history.Open(j.cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(j.logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the run is not recorded; check state_dir"),
			logging.String(logging.FieldImpact, "bookminify history will not show this run"),
		)
		result.historyNote = "not recorded"
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var opts []minify.Option
	if store != nil {
		opts = append(opts, minify.WithStartHook(func(ctx context.Context, runID, archivePath string, startedAt time.Time) {
			if err := store.Begin(ctx, runID, archivePath, startedAt); err != nil {
				logging.WarnWithContext(logging.WithContext(ctx, j.logger), "record run start", "history_write_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check state_dir permissions"),
				)
			}
		}))
	}
	var bar *pageBar
	if j.progress {
		bar = newPageBar(j.stderr)
		opts = append(opts, minify.WithProgress(bar.update))
	}

	m := minify.New(archives, converter, capability, minify.SettingsFromConfig(j.cfg), j.logger, opts...)
	report := m.Minify(ctx, target)
	m.Janitor().Wait()
	bar.finish()
	result.report = report

	if report.Status == minify.StatusAccepted && j.replace {
		dest, err := adopt(report.Outcome.ArchivePath, report.ArchivePath)
		if err != nil {
			report.Status = minify.StatusFailed
			report.Outcome = nil
			report.Err = err
			result.report = report
			logging.ErrorWithContext(j.logger, "replace original failed", "replace_failed",
				logging.String(logging.FieldArchive, report.ArchivePath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the original archive was left in place"),
			)
		} else {
			result.replacedAt = dest
			result.report.Outcome.ArchivePath = dest
		}
	}

	if store != nil {
		// The run context may already be cancelled; the final row still matters.
		if err := store.Finish(context.WithoutCancel(ctx), runFromReport(result.report)); err != nil {
			logging.WarnWithContext(j.logger, "record run result", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			)
			result.historyNote = "not recorded"
		}
	}
	return result, nil
}

// errReplaceTargetExists is returned when --replace would overwrite a file
// other than the original archive.
var errReplaceTargetExists = errors.New("replacement target already exists")

// adopt moves the accepted archive next to the original. Zip-compatible
// names (.zip, .cbz) are overwritten in place; any other format is replaced
// by a sibling with the zip extension matching its family, provided no such
// sibling exists yet.
func adopt(packed, original string) (string, error) {
	dest := replacementPath(original)
	if dest != original {
		if _, err := os.Lstat(dest); err == nil {
			return "", services.Wrap(services.ErrWorkspace, "replace", "check target",
				fmt.Sprintf("%s would be overwritten", filepath.Base(dest)), errReplaceTargetExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrWorkspace, "replace", "check target", "stat replacement target", err)
		}
	}
	if err := fileutil.MoveFile(packed, dest); err != nil {
		return "", services.Wrap(services.ErrWorkspace, "replace", "move", "move packed archive over original", err)
	}
	if dest != original {
		if err := os.Remove(original); err != nil && !errors.Is(err, os.ErrNotExist) {
			return dest, services.Wrap(services.ErrWorkspace, "replace", "remove", "remove original after replace", err)
		}
	}
	return dest, nil
}

func replacementPath(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	stem := strings.TrimSuffix(original, filepath.Ext(original))
	switch ext {
	case ".zip", ".cbz":
		return original
	case ".cbr", ".cb7", ".cbt":
		return stem + ".cbz"
	default:
		return stem + ".zip"
	}
}

func runFromReport(report minify.Report) history.Run {
	run := history.Run{
		RunID:            report.RunID,
		ArchivePath:      report.ArchivePath,
		Status:           report.Status.String(),
		Stage:            report.Stage,
		Entries:          report.Stats.Entries,
		Converted:        report.Stats.Converted,
		Copied:           report.Stats.Copied,
		OldSize:          report.Stats.OldSizeBytes,
		NewSize:          report.Stats.NewSizeBytes,
		ReductionPercent: report.Stats.ReductionPercent,
		FinishedAt:       time.Now(),
		Duration:         report.Duration,
	}
	if report.Err != nil {
		run.ErrorKind = services.Kind(report.Err)
		run.ErrorMessage = report.Err.Error()
	}
	if report.Outcome != nil {
		run.OutputPath = report.Outcome.ArchivePath
	}
	return run
}

func printReport(out io.Writer, result minifyResult) {
	report := result.report
	colors := newPalette(out)

	fmt.Fprintf(out, "Archive:   %s\n", report.ArchivePath)
	fmt.Fprintf(out, "Status:    %s\n", colors.status(report.Status.String()))
	fmt.Fprintf(out, "Run:       %s\n", report.RunID)
	if report.Stats.Entries > 0 {
		fmt.Fprintf(out, "Pages:     %d entries, %d converted, %d copied\n",
			report.Stats.Entries, report.Stats.Converted, report.Stats.Copied)
	}
	if report.Stats.OldSizeBytes > 0 {
		fmt.Fprintf(out, "Original:  %s (%s)\n", formatBytes(report.Stats.OldSizeBytes), formatExactBytes(report.Stats.OldSizeBytes))
	}
	if report.Stats.NewSizeBytes > 0 {
		fmt.Fprintf(out, "New size:  %s (%s)\n", formatBytes(report.Stats.NewSizeBytes), formatExactBytes(report.Stats.NewSizeBytes))
		fmt.Fprintf(out, "Reduction: %s\n", formatPercent(report.Stats.ReductionPercent))
	}
	switch report.Status {
	case minify.StatusAccepted:
		fmt.Fprintf(out, "Saved:     %s\n", formatBytes(report.Outcome.SavedBytes))
		if result.replacedAt != "" {
			fmt.Fprintf(out, "Replaced:  %s\n", result.replacedAt)
		} else {
			fmt.Fprintf(out, "Output:    %s\n", report.Outcome.ArchivePath)
		}
	case minify.StatusRejected:
		fmt.Fprintln(out, colors.dim.Sprint("Not a useful reduction; the original archive is unchanged."))
	case minify.StatusFailed:
		fmt.Fprintf(out, "Stage:     %s\n", report.Stage)
	}
	fmt.Fprintf(out, "Duration:  %s\n", formatDuration(report.Duration))
	if result.historyNote != "" {
		fmt.Fprintf(out, "History:   %s\n", result.historyNote)
	}
}
