package logging

import (
	"context"
	"log/slog"

	"scenepack/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldMovie is the standardized key for the normalized movie folder name.
	FieldMovie = "movie"
	// FieldStage is the standardized key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized key correlating every line of one batch run.
	FieldRunID = "run_id"
	// FieldPacket names the packet file a line refers to.
	FieldPacket = "packet"
	// FieldEventType classifies a line for filtering (e.g. corrupt_packet).
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step after a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldProgressPercent carries sampled progress.
	FieldProgressPercent = "progress_percent"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if movie, ok := services.MovieFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMovie, movie))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(toArgs(fields)...)
}
