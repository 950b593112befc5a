package features

import (
	"fmt"
	"math"

	"scenepack/internal/services"
)

// FrameFeature is the feature vector extracted for one frame.
type FrameFeature struct {
	FrameID  string    `json:"frameId"`
	Features []float32 `json:"features"`
}

// FeatureSet is the temporally ordered sequence of frames of one movie.
type FeatureSet []FrameFeature

// FrameID renders a zero-based frame index the way the frame extractor names
// its output (frame0000042).
func FrameID(index int) string {
	return fmt.Sprintf("frame%07d", index)
}

// Len returns the number of frames.
func (s FeatureSet) Len() int {
	return len(s)
}

// Dimension returns the shared vector length of the set. An empty set has
// dimension zero. Frames of differing length yield ErrDimensionMismatch.
func (s FeatureSet) Dimension() (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	dim := len(s[0].Features)
	for i := 1; i < len(s); i++ {
		if got := len(s[i].Features); got != dim {
			return 0, fmt.Errorf("%w: frame %s has %d values, frame %s has %d",
				services.ErrDimensionMismatch, s[i].FrameID, got, s[0].FrameID, dim)
		}
	}
	return dim, nil
}

// Select returns the frames whose index is in indices, in set order.
// Out-of-range indices are ignored.
func (s FeatureSet) Select(indices []int) FeatureSet {
	if len(indices) == 0 || len(s) == 0 {
		return FeatureSet{}
	}
	keep := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		keep[idx] = struct{}{}
	}
	out := make(FeatureSet, 0, len(keep))
	for i, frame := range s {
		if _, ok := keep[i]; ok {
			out = append(out, frame)
		}
	}
	return out
}

// Round rounds value to the given number of decimal places, half away from zero.
func Round(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
