package shots

import (
	"fmt"
	"math"

	"scenepack/internal/features"
	"scenepack/internal/services"
)

// SimilarityPlaces is the number of decimals similarities are rounded to
// before thresholding.
const SimilarityPlaces = 2

// Edge is the similarity between two temporally adjacent frames.
type Edge struct {
	Source      string
	Destination string
	Similarity  float64
	// LowConfidence is set when either vector has zero norm (or holds
	// non-finite values) and Similarity was forced to 0.
	LowConfidence bool
}

// Similarities returns one edge per adjacent frame pair, so N frames yield
// N-1 edges and fewer than two frames yield none.
func Similarities(set features.FeatureSet) ([]Edge, error) {
	if len(set) < 2 {
		return []Edge{}, nil
	}
	edges := make([]Edge, 0, len(set)-1)
	for i := 0; i+1 < len(set); i++ {
		a, b := set[i], set[i+1]
		if len(a.Features) != len(b.Features) {
			return nil, fmt.Errorf("%w: frame %s has %d values, frame %s has %d",
				services.ErrDimensionMismatch, a.FrameID, len(a.Features), b.FrameID, len(b.Features))
		}
		sim, ok := Cosine(a.Features, b.Features)
		edges = append(edges, Edge{
			Source:        a.FrameID,
			Destination:   b.FrameID,
			Similarity:    features.Round(sim, SimilarityPlaces),
			LowConfidence: !ok,
		})
	}
	return edges, nil
}

// Cosine computes the cosine similarity of equal-length vectors in float64,
// clamped to [-1, 1]. It reports false, with a similarity of 0, when either
// vector has zero norm or the result is not finite.
func Cosine(a, b []float32) (float64, bool) {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, sim)), true
}

// LowConfidenceCount counts edges computed from a zero-norm vector.
func LowConfidenceCount(edges []Edge) int {
	n := 0
	for _, e := range edges {
		if e.LowConfidence {
			n++
		}
	}
	return n
}
