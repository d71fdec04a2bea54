package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Status values stored in the ledger. The terminal ones mirror the minify
// report statuses.
const (
	StatusRunning   = "running"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Run is one row of the ledger.
type Run struct {
	ID               int64
	RunID            string
	ArchivePath      string
	Status           string
	Stage            string
	ErrorKind        string
	ErrorMessage     string
	Entries          int
	Converted        int
	Copied           int
	OldSize          int64
	NewSize          int64
	ReductionPercent float64
	OutputPath       string
	StartedAt        time.Time
	FinishedAt       time.Time
	Duration         time.Duration
}

// SavedBytes is the space reclaimed by an accepted run.
func (r Run) SavedBytes() int64 {
	if r.Status != StatusAccepted {
		return 0
	}
	return r.OldSize - r.NewSize
}

// Begin records a run that has just started.
func (s *Store) Begin(ctx context.Context, runID, archivePath string, startedAt time.Time) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("begin run: run id required")
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (run_id, archive_path, status, started_at) VALUES (?, ?, ?, ?)`,
		runID, archivePath, StatusRunning, formatTime(startedAt),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// Finish stores the final state of a run, inserting it if Begin was never
// recorded.
func (s *Store) Finish(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("finish run: run id required")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt.Add(-run.Duration)
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (
            run_id, archive_path, status, stage, error_kind, error_message,
            entries, converted, copied, old_size, new_size, reduction_percent,
            output_path, started_at, finished_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            status = excluded.status,
            stage = excluded.stage,
            error_kind = excluded.error_kind,
            error_message = excluded.error_message,
            entries = excluded.entries,
            converted = excluded.converted,
            copied = excluded.copied,
            old_size = excluded.old_size,
            new_size = excluded.new_size,
            reduction_percent = excluded.reduction_percent,
            output_path = excluded.output_path,
            finished_at = excluded.finished_at,
            duration_ms = excluded.duration_ms`,
		run.RunID,
		run.ArchivePath,
		run.Status,
		nullableString(run.Stage),
		nullableString(run.ErrorKind),
		nullableString(run.ErrorMessage),
		run.Entries,
		run.Converted,
		run.Copied,
		run.OldSize,
		run.NewSize,
		run.ReductionPercent,
		nullableString(run.OutputPath),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	Limit   int
	Archive string
	Status  string
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	ctx = orBackground(ctx)
	query := `SELECT id, run_id, archive_path, status, stage, error_kind, error_message,
        entries, converted, copied, old_size, new_size, reduction_percent,
        output_path, started_at, finished_at, duration_ms FROM runs`
	var (
		where []string
		args  []any
	)
	if opts.Archive != "" {
		where = append(where, "archive_path = ?")
		args = append(args, opts.Archive)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ActiveRunIDs returns the run IDs still marked as running.
func (s *Store) ActiveRunIDs(ctx context.Context) ([]string, error) {
	ctx = orBackground(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs WHERE status = ?`, StatusRunning)
	if err != nil {
		return nil, fmt.Errorf("active runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkAbandoned closes running rows started before cutoff. Those belong to
// processes that died without finishing.
func (s *Store) MarkAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE status = ? AND started_at < ?`,
		StatusAbandoned, formatTime(time.Now()), StatusRunning, formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	return res.RowsAffected()
}

// Totals aggregates the ledger.
type Totals struct {
	Runs       int
	Accepted   int
	Rejected   int
	Failed     int
	SavedBytes int64
}

// Totals summarizes every recorded run.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	ctx = orBackground(ctx)
	var t Totals
	err := s.db.QueryRowContext(ctx, `SELECT
            COUNT(1),
            COALESCE(SUM(CASE WHEN status = 'accepted' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'accepted' THEN old_size - new_size ELSE 0 END), 0)
        FROM runs`).Scan(&t.Runs, &t.Accepted, &t.Rejected, &t.Failed, &t.SavedBytes)
	if err != nil {
		return Totals{}, fmt.Errorf("totals: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                          Run
		stage, kind, message, output sql.NullString
		startedAt                    string
		finishedAt                   sql.NullString
		durationMS                   int64
	)
	if err := row.Scan(
		&run.ID, &run.RunID, &run.ArchivePath, &run.Status, &stage, &kind, &message,
		&run.Entries, &run.Converted, &run.Copied, &run.OldSize, &run.NewSize, &run.ReductionPercent,
		&output, &startedAt, &finishedAt, &durationMS,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Stage = stage.String
	run.ErrorKind = kind.String
	run.ErrorMessage = message.String
	run.OutputPath = output.String
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
