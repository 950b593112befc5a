package services

import "context"

type contextKey string

const (
	movieKey contextKey = "movie"
	stageKey contextKey = "stage"
	runIDKey contextKey = "run_id"
)

// WithMovie annotates context with the normalized movie folder name.
func WithMovie(ctx context.Context, movie string) context.Context {
	if movie == "" {
		return ctx
	}
	return context.WithValue(ctx, movieKey, movie)
}

// MovieFromContext returns the movie name if present.
func MovieFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(movieKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
