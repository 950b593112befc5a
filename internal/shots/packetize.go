package shots

import (
	"context"
	"log/slog"

	"scenepack/internal/features"
	"scenepack/internal/logging"
	"scenepack/internal/packetizer"
)

// Detection is the outcome of scoring and segmenting one movie.
type Detection struct {
	Edges         []Edge
	Boundaries    []int
	LowConfidence int
}

// Detect scores adjacent frames of set and derives the shot boundaries.
func Detect(set features.FeatureSet, threshold float64) (Detection, error) {
	edges, err := Similarities(set)
	if err != nil {
		return Detection{}, err
	}
	return Detection{
		Edges:         edges,
		Boundaries:    Boundaries(edges, threshold),
		LowConfidence: LowConfidenceCount(edges),
	}, nil
}

// Packetize writes the boundary frames of set into dir as packets of size
// records and marks the folder complete. Boundary indices use set
// membership, so duplicates select a frame once.
func Packetize(ctx context.Context, set features.FeatureSet, boundaries []int, dir string, size int, logger *slog.Logger) (packetizer.Stats, error) {
	selected := set.Select(boundaries)
	logging.WithContext(ctx, logger).Debug("shot frames selected",
		logging.Int("boundaries", len(boundaries)),
		logging.Int("frames", len(selected)),
	)
	return packetizer.WriteSet(ctx, dir, size, selected, "shots", logger)
}
