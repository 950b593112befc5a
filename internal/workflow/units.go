package workflow

import (
	"context"
	"errors"
	"log/slog"

	"scenepack/internal/aggregate"
	"scenepack/internal/config"
	"scenepack/internal/features"
	"scenepack/internal/fileutil"
	"scenepack/internal/ledger"
	"scenepack/internal/logging"
	"scenepack/internal/merge"
	"scenepack/internal/packetizer"
	"scenepack/internal/services"
	"scenepack/internal/shots"
)

// packetizeUnit streams an extractor folder into packets under the features
// root.
func (r *Runner) packetizeUnit(ctx context.Context, logger *slog.Logger, track *tracker, folder Folder) (Outcome, error) {
	out, err := packetizer.PrepareOutput(r.cfg.Paths.FeaturesRoot, folder.Source, r.policy())
	if err != nil {
		return Outcome{}, err
	}
	if out.Skipped {
		return Outcome{Status: OutcomeSkipped, Reason: string(out.Reason), Output: out.Dir}, nil
	}
	if out.Resumed {
		logger.Info("rebuilding interrupted output", logging.String(logging.FieldEventType, "output_resumed"))
	}

	src, err := features.OpenDirSource(folder.Path)
	if err != nil {
		return Outcome{Output: out.Dir}, err
	}
	defer src.Close()
	if !src.HasRecords() {
		logging.WarnWithContext(logger, "movie folder has no record files", "empty_source",
			logging.String("source_path", folder.Path),
			logging.String(logging.FieldErrorHint, "check that the extractor wrote *.jsonl files"),
			logging.String(logging.FieldImpact, "an empty packet folder is written"),
		)
	}

	stats, err := packetizer.Drain(ctx, out.Dir, r.cfg.Packets.PacketSize, src, config.StagePacketize, logger)
	outcome := Outcome{
		Output:  out.Dir,
		Records: stats.Records,
		Packets: stats.Packets,
		Corrupt: stats.Skipped,
		Resumed: out.Resumed,
	}
	if err != nil {
		return outcome, err
	}
	track.advance(ctx, folder.Name, ledger.StatusPacketized, ledger.Detail{Packets: stats.Packets, Records: stats.Records})
	return outcome, nil
}

// shotsUnit merges a packet folder, scores adjacent frames and packetizes
// the boundary frames under the shot features root.
func (r *Runner) shotsUnit(ctx context.Context, logger *slog.Logger, track *tracker, folder Folder) (Outcome, error) {
	if skip, ok := r.inputIncomplete(logger, folder); ok {
		return skip, nil
	}
	root := r.cfg.Paths.ShotFeaturesRoot
	probe, _, err := packetizer.Inspect(root, folder.Source, r.policy())
	if err != nil {
		return Outcome{}, err
	}
	if probe.Skipped {
		return Outcome{Status: OutcomeSkipped, Reason: string(probe.Reason), Output: probe.Dir}, nil
	}

	merged, err := merge.Folder(ctx, folder.Path, logger)
	if skip, ok := emptySet(err); ok {
		return skip, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	track.advance(ctx, folder.Name, ledger.StatusMerged, ledger.Detail{Records: merged.Set.Len()})

	detection, err := shots.Detect(merged.Set, r.cfg.Threshold())
	outcome := Outcome{
		Records:       merged.Set.Len(),
		Corrupt:       merged.Corrupt,
		Boundaries:    len(detection.Boundaries),
		LowConfidence: detection.LowConfidence,
	}
	if err != nil {
		return outcome, err
	}
	track.advance(ctx, folder.Name, ledger.StatusScored, ledger.Detail{})
	track.advance(ctx, folder.Name, ledger.StatusSegmented, ledger.Detail{Boundaries: len(detection.Boundaries)})
	if detection.LowConfidence > 0 {
		logger.Debug("zero-norm frames scored",
			logging.Int("low_confidence_edges", detection.LowConfidence),
			logging.Int("edges", len(detection.Edges)),
		)
	}

	out, err := packetizer.PrepareOutput(root, folder.Source, r.policy())
	if err != nil {
		return outcome, err
	}
	outcome.Output = out.Dir
	outcome.Resumed = out.Resumed
	stats, err := shots.Packetize(ctx, merged.Set, detection.Boundaries, out.Dir, r.cfg.Packets.PacketSize, logger)
	outcome.Packets = stats.Packets
	if err != nil {
		return outcome, err
	}
	track.advance(ctx, folder.Name, ledger.StatusShotPacketized, ledger.Detail{Packets: stats.Packets})
	return outcome, nil
}

// aggregateUnit merges a packet folder and writes its aggregate vectors.
func (r *Runner) aggregateUnit(ctx context.Context, logger *slog.Logger, track *tracker, folder Folder) (Outcome, error) {
	if skip, ok := r.inputIncomplete(logger, folder); ok {
		return skip, nil
	}
	root := r.cfg.Paths.AggFeaturesRoot
	exists, err := aggregate.Exists(root, folder.Name)
	if err != nil {
		return Outcome{}, err
	}
	if exists {
		return Outcome{
			Status: OutcomeSkipped,
			Reason: string(packetizer.SkipAlreadyProcessed),
			Output: aggregate.OutputPath(root, folder.Name),
		}, nil
	}

	merged, err := merge.Folder(ctx, folder.Path, logger)
	if skip, ok := emptySet(err); ok {
		return skip, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	track.advance(ctx, folder.Name, ledger.StatusMerged, ledger.Detail{Records: merged.Set.Len()})

	outcome := Outcome{Records: merged.Set.Len(), Corrupt: merged.Corrupt}
	result, err := aggregate.Compute(merged.Set, r.cfg.Aggregation.Methods)
	if err != nil {
		return outcome, err
	}
	path, skipped, err := aggregate.WriteFile(root, folder.Name, result)
	outcome.Output = path
	if err != nil {
		return outcome, err
	}
	if skipped {
		outcome.Status = OutcomeSkipped
		outcome.Reason = string(packetizer.SkipAlreadyProcessed)
		return outcome, nil
	}
	track.advance(ctx, folder.Name, ledger.StatusAggregated, ledger.Detail{Records: merged.Set.Len()})
	return outcome, nil
}

// inputIncomplete rejects packet folders that an interrupted packetize run
// left without a completion marker. Legacy trees carry no markers, so
// legacy_skip accepts them.
func (r *Runner) inputIncomplete(logger *slog.Logger, folder Folder) (Outcome, bool) {
	if r.cfg.Workflow.LegacySkip || fileutil.IsComplete(folder.Path) {
		return Outcome{}, false
	}
	logging.WarnWithContext(logger, "packet folder is incomplete", "input_incomplete",
		logging.String("source_path", folder.Path),
		logging.String(logging.FieldErrorHint, "re-run packetize, or set workflow.legacy_skip for trees without markers"),
		logging.String(logging.FieldImpact, "movie is skipped by this stage"),
	)
	return Outcome{Status: OutcomeSkipped, Reason: ReasonInputIncomplete}, true
}

// emptySet turns a merge that yielded no frames into a skipped outcome.
func emptySet(err error) (Outcome, bool) {
	if err == nil || !errors.Is(err, services.ErrEmptyFeatureSet) {
		return Outcome{}, false
	}
	return Outcome{
		Status: OutcomeSkipped,
		Reason: ReasonEmptyFeatureSet,
		Kind:   services.KindEmptyFeatureSet,
	}, true
}
