package minify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"bookminify/internal/archive"
	"bookminify/internal/fileutil"
	"bookminify/internal/imageconv"
	"bookminify/internal/logging"
	"bookminify/internal/preflight"
	"bookminify/internal/services"
)

// Stage names reported in logs, errors, and the run history.
const (
	StagePreflight     = "preflight"
	StageSnapshot      = "snapshot"
	StageWorkspace     = "workspace"
	StageExtract       = "extract"
	StageVerifyExtract = "verify_extract"
	StageConvert       = "convert"
	StagePack          = "pack"
	StageVerifyPack    = "verify_pack"
	StageGate          = "gate"
	StageTimestamp     = "timestamp"
	StageDone          = "done"
)

// Status is the terminal state of a run.
type Status int

const (
	StatusFailed Status = iota
	StatusRejected
	StatusAccepted
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Outcome is the success record of an accepted run. The packed archive is
// left at ArchivePath for the caller to adopt.
type Outcome struct {
	ArchivePath      string
	OldSizeBytes     int64
	NewSizeBytes     int64
	SavedBytes       int64
	ReductionPercent float64
}

// Stats captures how far a run got, whatever its status.
type Stats struct {
	Entries          int
	Converted        int
	Copied           int
	OldSizeBytes     int64
	NewSizeBytes     int64
	ReductionPercent float64
}

// Report is the single result of Minify. Outcome is non-nil only when Status
// is StatusAccepted; Err is non-nil only when Status is StatusFailed.
type Report struct {
	RunID       string
	ArchivePath string
	Status      Status
	Stage       string
	Outcome     *Outcome
	Stats       Stats
	Err         error
	Duration    time.Duration
}

// Option configures a Minifier.
type Option func(*Minifier)

// WithProgress registers a callback invoked after every entry.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Minifier) {
		m.progress = fn
	}
}

// WithRunIDGenerator overrides run ID generation (primarily for tests).
func WithRunIDGenerator(fn func() string) Option {
	return func(m *Minifier) {
		if fn != nil {
			m.newRunID = fn
		}
	}
}

// WithClock overrides the time source used for progress and durations.
func WithClock(now func() time.Time) Option {
	return func(m *Minifier) {
		if now != nil {
			m.now = now
		}
	}
}

// StartFunc observes a run as soon as its ID is assigned.
type StartFunc func(ctx context.Context, runID, archivePath string, startedAt time.Time)

// WithStartHook registers a callback invoked before any stage runs. The CLI
// uses it to record the run in the history ledger.
func WithStartHook(fn StartFunc) Option {
	return func(m *Minifier) {
		m.onStart = fn
	}
}

// Minifier runs the re-encoding pipeline. It holds no per-run state, so one
// Minifier may serve concurrent runs on different archives.
type Minifier struct {
	archives   archive.Service
	converter  imageconv.Converter
	capability preflight.Capability
	settings   Settings
	router     Router
	gate       Gate
	logger     *slog.Logger
	janitor    *Janitor
	progress   ProgressFunc
	onStart    StartFunc
	newRunID   func() string
	now        func() time.Time
	chtimes    func(string, time.Time, time.Time) error
}

// New constructs a Minifier from explicit collaborators.
func New(archives archive.Service, converter imageconv.Converter, capability preflight.Capability, settings Settings, logger *slog.Logger, opts ...Option) *Minifier {
	logger = logging.NewComponentLogger(logger, "minify")
	m := &Minifier{
		archives:   archives,
		converter:  converter,
		capability: capability,
		settings:   settings,
		router:     NewRouter(settings),
		gate:       Gate{UsefulPercent: settings.UsefulPercent},
		logger:     logger,
		newRunID:   uuid.NewString,
		now:        time.Now,
		chtimes:    os.Chtimes,
	}
	m.janitor = NewJanitor(logger)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Janitor exposes the cleanup worker so callers can wait for pending removals.
func (m *Minifier) Janitor() *Janitor {
	return m.janitor
}

// stageError carries the failing stage alongside the classified error.
type stageError struct {
	stage string
	hint  string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func fail(stage string, marker error, message, hint string, err error) error {
	return &stageError{
		stage: stage,
		hint:  hint,
		err:   services.Wrap(marker, stage, "", message, err),
	}
}

// run is the per-invocation state of Minify.
type run struct {
	m         *Minifier
	ctx       context.Context
	logger    *slog.Logger
	path      string
	workspace Workspace
	report    *Report

	atime   time.Time
	mtime   time.Time
	oldList []string
}

// Minify re-encodes the archive at archivePath. It always returns a Report
// and removes the run's workspace before returning, in the background.
func (m *Minifier) Minify(ctx context.Context, archivePath string) (report Report) {
	start := m.now()
	runID := m.newRunID()
	if abs, err := filepath.Abs(archivePath); err == nil {
		archivePath = abs
	}

	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithArchive(ctx, archivePath)
	logger := logging.WithContext(ctx, m.logger)

	report = Report{RunID: runID, ArchivePath: archivePath, Status: StatusFailed}
	r := &run{
		m:         m,
		ctx:       ctx,
		logger:    logger,
		path:      archivePath,
		workspace: NewWorkspace(m.settings.CacheDir, archivePath, runID),
		report:    &report,
	}

	defer func() {
		m.janitor.Remove(r.workspace.ExtractDir)
		m.janitor.Remove(r.workspace.OutputDir)
		report.Duration = m.now().Sub(start)
	}()
	defer func() {
		if p := recover(); p != nil {
			report.Status = StatusFailed
			report.Outcome = nil
			report.Err = fmt.Errorf("panic during %s: %v", report.Stage, p)
			logging.ErrorWithContext(logger, "minify aborted", "minify_panic",
				logging.String(logging.FieldStage, report.Stage),
				logging.Any("panic", p),
			)
		}
	}()

	if m.onStart != nil {
		m.onStart(ctx, runID, archivePath, start)
	}
	logger.Info("minify started",
		logging.String("workspace", r.workspace.OutputDir),
		logging.String("engine", m.capability.Engine),
	)

	if err := r.execute(ctx); err != nil {
		report.Status = StatusFailed
		report.Outcome = nil
		report.Err = err
		var se *stageError
		hint := "check logs for details"
		if errors.As(err, &se) {
			report.Stage = se.stage
			hint = se.hint
		}
		logging.ErrorWithContext(logger, "minify failed", "minify_failed",
			logging.String(logging.FieldStage, report.Stage),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
		)
	}
	return report
}

// enter records the current stage and tags subsequent log lines with it.
func (r *run) enter(stage string) {
	r.report.Stage = stage
	r.logger = logging.WithContext(services.WithStage(r.ctx, stage), r.m.logger)
	r.logger.Debug("stage started")
}

func (r *run) execute(ctx context.Context) error {
	m := r.m

	r.enter(StagePreflight)
	if !m.capability.Available || m.converter == nil {
		detail := m.capability.Detail
		if detail == "" {
			detail = "no converter configured"
		}
		return fail(StagePreflight, services.ErrUnavailable, detail,
			"install ImageMagick or set conversion.engine = \"imaging\"", nil)
	}

	if err := r.snapshot(ctx); err != nil {
		return err
	}

	r.enter(StageWorkspace)
	if err := os.MkdirAll(r.workspace.OutputDir, 0o755); err != nil {
		return fail(StageWorkspace, services.ErrWorkspace, "create output directory",
			"check cache_dir permissions", err)
	}

	r.enter(StageExtract)
	extracted, err := m.archives.ExtractAll(ctx, r.path, r.workspace.ExtractDir)
	if err != nil {
		return fail(StageExtract, services.ErrExtraction, "extract archive",
			"verify the archive opens with the configured archive engine", err)
	}

	r.enter(StageVerifyExtract)
	if !SameImageSet(extracted, r.oldList, KeepExtension) {
		return fail(StageVerifyExtract, services.ErrVerification,
			fmt.Sprintf("extracted %d files differ from %d listed", len(extracted), len(r.oldList)),
			"the archive may be damaged or contain unsupported entry names", nil)
	}

	if err := r.convertAll(ctx, extracted); err != nil {
		return err
	}

	packed, err := r.pack(ctx)
	if err != nil {
		return err
	}

	return r.finish(packed)
}

func (r *run) snapshot(ctx context.Context) error {
	r.enter(StageSnapshot)
	info, err := os.Stat(r.path)
	if err != nil {
		return fail(StageSnapshot, services.ErrExtraction, "stat archive", "check the archive path", err)
	}
	if info.IsDir() {
		return fail(StageSnapshot, services.ErrExtraction, "archive path is a directory", "pass an archive file", nil)
	}
	r.atime = fileutil.AccessTime(info)
	r.mtime = info.ModTime()
	r.report.Stats.OldSizeBytes = info.Size()

	listing, err := r.m.archives.List(ctx, r.path)
	if err != nil {
		return fail(StageSnapshot, services.ErrExtraction, "list archive",
			"verify the archive opens with the configured archive engine", err)
	}
	r.oldList = listing.Files
	r.report.Stats.Entries = len(listing.Files)
	return nil
}

// convertAll processes entries strictly in order and stops at the first
// failure.
func (r *run) convertAll(ctx context.Context, entries []string) error {
	r.enter(StageConvert)
	m := r.m
	tracker := newProgressTracker(len(entries), m.now)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return fail(StageConvert, services.ErrConversion, "interrupted", "rerun the archive", err)
		}
		decision, err := r.processEntry(ctx, entry)
		if err != nil {
			r.logger.Debug("entry failed",
				logging.String(logging.FieldEntry, entry),
				logging.String("action", decision.Action.String()),
			)
			return fail(StageConvert, services.ErrConversion, entry, "inspect the failing page with the conversion engine", err)
		}

		p := tracker.step(i, entry, decision.Action)
		if decision.Action == ActionConvert {
			r.report.Stats.Converted++
			attrs := []logging.Attr{
				logging.Int("index", p.Index),
				logging.Int("total", p.Total),
				logging.String(logging.FieldEntry, entry),
				logging.String("profile", decision.Profile.Name),
				logging.Duration("per_file", p.PerFile),
			}
			if eta := formatETA(p.Remaining); eta != "" && p.Index < p.Total {
				attrs = append(attrs, logging.String("eta", eta))
			}
			r.logger.Info("page converted", logging.Args(attrs...)...)
		} else {
			r.report.Stats.Copied++
			r.logger.Debug("page copied",
				logging.String(logging.FieldEntry, entry),
				logging.String("reason", decision.Reason),
			)
		}
		if m.progress != nil {
			m.progress(p)
		}
	}
	return nil
}

func (r *run) processEntry(ctx context.Context, entry string) (Decision, error) {
	src := filepath.Join(r.workspace.ExtractDir, filepath.FromSlash(entry))
	info, err := os.Stat(src)
	if err != nil {
		return Decision{}, err
	}
	decision := r.m.router.Route(entry, info.Size())
	dst := filepath.Join(r.workspace.OutputDir, filepath.FromSlash(OutputName(entry, decision)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return decision, err
	}
	if decision.Action == ActionCopy {
		return decision, fileutil.CopyFile(src, dst)
	}
	return decision, r.m.converter.Convert(ctx, src, dst, decision.Profile)
}

// pack builds the new archive and checks its page set. Any packed file is
// discarded on failure.
func (r *run) pack(ctx context.Context) (string, error) {
	m := r.m

	r.enter(StagePack)
	result, err := m.archives.PackFolder(ctx, r.workspace.OutputDir)
	if err != nil {
		m.janitor.Remove(result.ArchivePath)
		return "", fail(StagePack, services.ErrPack, "pack output", "check free space in cache_dir", err)
	}
	packed := result.ArchivePath

	r.enter(StageVerifyPack)
	listing, err := m.archives.List(ctx, packed)
	if err != nil {
		m.janitor.Remove(packed)
		return "", fail(StageVerifyPack, services.ErrVerification, "list packed archive", "check logs for details", err)
	}
	if !SameImageSet(listing.Files, r.oldList, StripExtension) {
		m.janitor.Remove(packed)
		return "", fail(StageVerifyPack, services.ErrVerification,
			"packed pages differ from the original", "look for pages whose names differ only by extension", nil)
	}
	return packed, nil
}

func (r *run) finish(packed string) error {
	m := r.m
	stats := &r.report.Stats

	r.enter(StageGate)
	info, err := os.Stat(packed)
	if err != nil {
		m.janitor.Remove(packed)
		return fail(StageGate, services.ErrPack, "stat packed archive", "check logs for details", err)
	}
	stats.NewSizeBytes = info.Size()
	stats.ReductionPercent = ReductionPercent(stats.OldSizeBytes, stats.NewSizeBytes)

	if !m.gate.Accept(stats.ReductionPercent) {
		m.janitor.Remove(packed)
		r.report.Status = StatusRejected
		r.logger.Info("not a useful work, abandoning",
			logging.Float64("reduction_percent", stats.ReductionPercent),
			logging.Float64("useful_percent", m.gate.UsefulPercent),
		)
		return nil
	}

	r.enter(StageTimestamp)
	if err := m.chtimes(packed, r.atime, r.mtime); err != nil {
		m.janitor.Remove(packed)
		return fail(StageTimestamp, services.ErrTimestamp, "preserve original times", "check cache_dir filesystem supports utimes", err)
	}

	r.enter(StageDone)
	r.report.Status = StatusAccepted
	r.report.Outcome = &Outcome{
		ArchivePath:      packed,
		OldSizeBytes:     stats.OldSizeBytes,
		NewSizeBytes:     stats.NewSizeBytes,
		SavedBytes:       stats.OldSizeBytes - stats.NewSizeBytes,
		ReductionPercent: stats.ReductionPercent,
	}
	r.logger.Info("minify accepted",
		logging.Int64("old_bytes", stats.OldSizeBytes),
		logging.Int64("new_bytes", stats.NewSizeBytes),
		logging.Float64("reduction_percent", stats.ReductionPercent),
		logging.String("output", packed),
	)
	return nil
}
