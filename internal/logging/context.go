package logging

import (
	"context"
	"log/slog"

	"bookminify/internal/services"
)

// Standard attribute keys. The console handler lifts component, run_id,
// stage, and archive into the line header.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldStage     = "stage"
	FieldArchive   = "archive"
	// FieldEntry names a file inside an archive.
	FieldEntry     = "entry"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
)

// WithContext returns logger tagged with the run, stage, and archive carried
// by ctx. Keys absent from ctx are skipped.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := services.RunIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		args = append(args, slog.String(FieldStage, stage))
	}
	if path, ok := services.ArchiveFromContext(ctx); ok {
		args = append(args, slog.String(FieldArchive, path))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
