package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scenepack/internal/config"
	"scenepack/internal/ledger"
	"scenepack/internal/logging"
	"scenepack/internal/packetizer"
	"scenepack/internal/preflight"
	"scenepack/internal/services"
)

// Runner executes pipeline stages over their input roots.
type Runner struct {
	cfg    *config.Config
	store  *ledger.Store
	logger *slog.Logger
}

// NewRunner constructs a runner. A nil store disables the run ledger.
func NewRunner(cfg *config.Config, store *ledger.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "workflow"),
	}
}

type job struct {
	index  int
	folder Folder
}

type unitFunc func(context.Context, *slog.Logger, *tracker, Folder) (Outcome, error)

// Run executes stage over every folder of its input root. The returned error
// is non-nil only for stage-level failures; per-movie failures are reported
// in the summary. On cancellation the summary holds the folders that were
// dispatched and the context error is returned.
func (r *Runner) Run(ctx context.Context, stage string) (*Summary, error) {
	unit, err := r.unitFor(stage)
	if err != nil {
		return nil, err
	}
	if err := r.cfg.ValidateStage(stage); err != nil {
		return nil, err
	}

	input, output := r.cfg.StageRoots(stage)
	discovery, err := Discover(input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stage, err)
	}
	if err := preflight.Failures(preflight.CheckStage(r.cfg, stage)); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "preflight", "", err)
	}

	lock, err := lockOutput(output)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stage, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String(logging.FieldImpact, "lock file remains until the process exits"),
			)
		}
	}()

	summary := &Summary{
		RunID:   uuid.NewString(),
		Stage:   stage,
		Input:   input,
		Output:  output,
		Started: time.Now(),
	}
	ctx = services.WithRunID(services.WithStage(ctx, stage), summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	track := r.beginRun(ctx, logger, summary.RunID, stage)

	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("input_root", input),
		logging.String("output_root", output),
		logging.Int("folders", len(discovery.Folders)),
		logging.Int("workers", r.workers()),
	)

	for _, rejected := range discovery.Rejected {
		logging.WarnWithContext(logger, "skipping movie folder", "folder_rejected",
			logging.String("source", rejected.Source),
			logging.Movie(rejected.Movie),
			logging.String("reason", rejected.Reason),
			logging.String(logging.FieldErrorHint, "rename the source folder so its normalized name is unique"),
			logging.String(logging.FieldImpact, "folder is not processed"),
		)
	}

	outcomes := r.dispatch(ctx, logger, track, unit, discovery.Folders)
	summary.Outcomes = append(discovery.Rejected, outcomes...)
	summary.Duration = time.Since(summary.Started)

	totals := summary.Totals()
	if err := ctx.Err(); err != nil {
		summary.Canceled = true
		track.finish(ledger.RunAborted, totals, err.Error())
		logger.Warn("stage aborted",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Int("dispatched", len(outcomes)),
			logging.Int("folders", len(discovery.Folders)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "undispatched folders are processed on the next run"),
		)
		return summary, err
	}

	track.finish(ledger.RunCompleted, totals, "")
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("processed", totals.Processed),
		logging.Int("skipped", totals.Skipped),
		logging.Int("failed", totals.Failed),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// RunAll validates every stage up front and then runs them in order,
// stopping at the first stage-level error.
func (r *Runner) RunAll(ctx context.Context) ([]*Summary, error) {
	var problems []error
	for _, stage := range config.Stages() {
		if err := r.cfg.ValidateStage(stage); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", stage, err))
		}
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	summaries := make([]*Summary, 0, len(config.Stages()))
	for _, stage := range config.Stages() {
		summary, err := r.Run(ctx, stage)
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

func (r *Runner) unitFor(stage string) (unitFunc, error) {
	switch stage {
	case config.StagePacketize:
		return r.packetizeUnit, nil
	case config.StageShots:
		return r.shotsUnit, nil
	case config.StageAggregate:
		return r.aggregateUnit, nil
	}
	return nil, fmt.Errorf("%w: unknown stage %q", services.ErrConfiguration, stage)
}

func (r *Runner) workers() int {
	if r.cfg.Workflow.Workers < 1 {
		return 1
	}
	return r.cfg.Workflow.Workers
}

func (r *Runner) policy() packetizer.Policy {
	return packetizer.Policy{LegacySkip: r.cfg.Workflow.LegacySkip}
}

// dispatch feeds folders to the worker pool until they run out or ctx is
// canceled, and returns the outcomes in discovery order.
func (r *Runner) dispatch(ctx context.Context, logger *slog.Logger, track *tracker, unit unitFunc, folders []Folder) []Outcome {
	jobs := make(chan job)
	var (
		mu      sync.Mutex
		indexed = make(map[int]Outcome, len(folders))
		wg      sync.WaitGroup
	)

	workers := min(r.workers(), max(len(folders), 1))
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcome := r.process(ctx, logger, track, unit, j.folder)
				mu.Lock()
				indexed[j.index] = outcome
				mu.Unlock()
			}
		}()
	}

send:
	for i, folder := range folders {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break send
		case jobs <- job{index: i, folder: folder}:
		}
	}
	close(jobs)
	wg.Wait()

	keys := make([]int, 0, len(indexed))
	for k := range indexed {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	outcomes := make([]Outcome, 0, len(keys))
	for _, k := range keys {
		outcomes = append(outcomes, indexed[k])
	}
	return outcomes
}

// process runs unit for one folder and turns its error into a failed
// outcome. Nothing a single movie does escapes this function.
func (r *Runner) process(ctx context.Context, logger *slog.Logger, track *tracker, unit unitFunc, folder Folder) Outcome {
	ctx = services.WithMovie(ctx, folder.Name)
	logger = logger.With(logging.Movie(folder.Name))
	started := time.Now()

	track.discover(ctx, folder)
	outcome, err := unit(ctx, logger, track, folder)
	outcome.Movie = folder.Name
	outcome.Source = folder.Source
	outcome.Duration = time.Since(started)

	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Err = err
		outcome.Kind = services.Classify(err)
		outcome.Error = err.Error()
		track.advance(ctx, folder.Name, ledger.StatusFailed, ledger.Detail{
			ErrorKind:    string(outcome.Kind),
			ErrorMessage: outcome.Error,
		})
		logging.ErrorWithContext(logger, "movie failed", "movie_failure",
			logging.String("error_kind", string(outcome.Kind)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(outcome.Kind)),
			logging.String(logging.FieldImpact, "movie is retried on the next run"),
		)
		return outcome
	}

	if outcome.Status == OutcomeSkipped {
		track.advance(ctx, folder.Name, ledger.StatusSkipped, ledger.Detail{ErrorKind: string(outcome.Kind)})
		logger.Info("movie skipped",
			logging.String(logging.FieldEventType, "movie_skipped"),
			logging.String("reason", outcome.Reason),
		)
		return outcome
	}

	outcome.Status = OutcomeProcessed
	logger.Info("movie processed",
		logging.String(logging.FieldEventType, "movie_complete"),
		logging.Int("records", outcome.Records),
		logging.Int("packets", outcome.Packets),
		logging.Duration("duration", outcome.Duration),
	)
	return outcome
}

func hintFor(kind services.Kind) string {
	switch kind {
	case services.KindDimensionMismatch:
		return "re-run the feature extractor so every frame has the same vector length"
	case services.KindIOFailure:
		return "check disk space and output root permissions"
	case services.KindMissingInput:
		return "the movie folder disappeared during the run"
	case services.KindCanceled:
		return "run the stage again to finish the movie"
	default:
		return "inspect the error and re-run the stage"
	}
}
