package workflow

import (
	"context"
	"log/slog"

	"scenepack/internal/ledger"
	"scenepack/internal/logging"
)

// tracker records a run's transitions in the ledger. A nil tracker or one
// without a store does nothing. Ledger failures are logged and never fail
// the movie.
type tracker struct {
	store  *ledger.Store
	runID  string
	logger *slog.Logger
}

func (r *Runner) beginRun(ctx context.Context, logger *slog.Logger, runID, stage string) *tracker {
	if r.store == nil {
		return nil
	}
	if err := r.store.BeginRun(context.WithoutCancel(ctx), runID, stage); err != nil {
		logging.WarnWithContext(logger, "run ledger unavailable", "ledger_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run scenepack doctor to check the ledger database"),
			logging.String(logging.FieldImpact, "this run is not recorded in the ledger"),
		)
		return nil
	}
	return &tracker{store: r.store, runID: runID, logger: logger}
}

func (t *tracker) discover(ctx context.Context, folder Folder) {
	if t == nil {
		return
	}
	if err := t.store.Discover(context.WithoutCancel(ctx), t.runID, folder.Name, folder.Path); err != nil {
		t.warn(folder.Name, err)
	}
}

func (t *tracker) advance(ctx context.Context, movie string, to ledger.Status, detail ledger.Detail) {
	if t == nil {
		return
	}
	if err := t.store.Advance(context.WithoutCancel(ctx), t.runID, movie, to, detail); err != nil {
		t.warn(movie, err)
	}
}

func (t *tracker) finish(status ledger.RunStatus, totals ledger.Totals, message string) {
	if t == nil {
		return
	}
	if err := t.store.FinishRun(context.Background(), t.runID, status, totals, message); err != nil {
		t.warn("", err)
	}
}

func (t *tracker) warn(movie string, err error) {
	t.logger.Warn("ledger update failed",
		logging.Movie(movie),
		logging.Error(err),
		logging.String(logging.FieldEventType, "ledger_failed"),
		logging.String(logging.FieldImpact, "ledger history for this movie is incomplete"),
	)
}
