package shots_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"scenepack/internal/features"
	"scenepack/internal/fileutil"
	"scenepack/internal/services"
	"scenepack/internal/shots"
	"scenepack/internal/testsupport"
)

func edges(sims ...float64) []shots.Edge {
	out := make([]shots.Edge, len(sims))
	for i, s := range sims {
		out[i] = shots.Edge{Source: features.FrameID(i), Destination: features.FrameID(i + 1), Similarity: s}
	}
	return out
}

func TestSimilaritiesEdgeCount(t *testing.T) {
	for n := 0; n < 2; n++ {
		got, err := shots.Similarities(testsupport.Frames(n, []float32{1, 2}))
		if err != nil || len(got) != 0 {
			t.Fatalf("n=%d: edges=%v err=%v", n, got, err)
		}
	}
	got, err := shots.Similarities(testsupport.Frames(5, []float32{1, 2}))
	if err != nil {
		t.Fatalf("Similarities: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("edges = %d, want 4", len(got))
	}
	if got[3].Source != "frame0000003" || got[3].Destination != "frame0000004" {
		t.Fatalf("last edge = %+v", got[3])
	}
}

func TestSimilarityValues(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
		low  bool
	}{
		{"identical", []float32{3, 4}, []float32{3, 4}, 1, false},
		{"scaled", []float32{1, 2}, []float32{2, 4}, 1, false},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, false},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1, false},
		{"rounded", []float32{1, 0}, []float32{1, 1}, 0.71, false},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := features.FeatureSet{{FrameID: "a", Features: tt.a}, {FrameID: "b", Features: tt.b}}
			got, err := shots.Similarities(set)
			if err != nil {
				t.Fatalf("Similarities: %v", err)
			}
			if got[0].Similarity != tt.want || got[0].LowConfidence != tt.low {
				t.Fatalf("edge = %+v, want similarity %v low %v", got[0], tt.want, tt.low)
			}
		})
	}
}

func TestSimilaritiesDimensionMismatch(t *testing.T) {
	set := features.FeatureSet{{FrameID: "a", Features: []float32{1, 2}}, {FrameID: "b", Features: []float32{1}}}
	if _, err := shots.Similarities(set); !errors.Is(err, services.ErrDimensionMismatch) {
		t.Fatalf("error = %v, want dimension mismatch", err)
	}
}

func TestBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		sims      []float64
		threshold float64
		want      []int
	}{
		{"two transitions", []float64{0.9, 0.5, 0.95, 0.4, 0.99}, 0.7, []int{2}},
		{"single transition", []float64{0.9, 0.2, 0.9}, 0.7, []int{}},
		{"none", []float64{0.9, 0.8}, 0.7, []int{}},
		{"equal is not a transition", []float64{0.7, 0.1, 0.7, 0.1}, 0.7, []int{2}},
		{"three transitions", []float64{0.1, 0.9, 0.9, 0.1, 0.9, 0.9, 0.9, 0.9, 0.1}, 0.5, []int{1, 5}},
		{"adjacent transitions", []float64{0.1, 0.1}, 0.5, []int{0}},
		{"empty", nil, 0.5, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shots.Boundaries(edges(tt.sims...), tt.threshold); !slices.Equal(got, tt.want) {
				t.Fatalf("Boundaries = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZeroNormEdgesTakePartInThresholding(t *testing.T) {
	set := features.FeatureSet{
		{FrameID: "a", Features: []float32{1, 0}},
		{FrameID: "b", Features: []float32{0, 0}},
		{FrameID: "c", Features: []float32{0, 1}},
		{FrameID: "d", Features: []float32{0, 1}},
	}
	det, err := shots.Detect(set, 0.5)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if det.LowConfidence != 2 {
		t.Fatalf("low confidence edges = %d, want 2", det.LowConfidence)
	}
	if !slices.Equal(det.Boundaries, []int{0}) {
		t.Fatalf("boundaries = %v, want [0]", det.Boundaries)
	}
}

func TestPacketizeSelectsBoundaryFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "MovieA")
	set := testsupport.Frames(10, []float32{1, 0})

	stats, err := shots.Packetize(context.Background(), set, []int{5, 2, 5, 40}, dir, 1, nil)
	if err != nil {
		t.Fatalf("Packetize: %v", err)
	}
	if stats.Records != 2 || stats.Packets != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	first := testsupport.ReadPacket(t, filepath.Join(dir, "packet0001.json"))
	second := testsupport.ReadPacket(t, filepath.Join(dir, "packet0002.json"))
	if first[0].FrameID != "frame0000002" || second[0].FrameID != "frame0000005" {
		t.Fatalf("selected frames %s, %s", first[0].FrameID, second[0].FrameID)
	}
	if !fileutil.IsComplete(dir) {
		t.Fatal("expected completion marker")
	}
}

func TestPacketizeNoBoundariesStillCompletes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "MovieA")
	stats, err := shots.Packetize(context.Background(), testsupport.Frames(3, []float32{1}), nil, dir, 4, nil)
	if err != nil {
		t.Fatalf("Packetize: %v", err)
	}
	if stats.Packets != 0 || !fileutil.IsComplete(dir) {
		t.Fatalf("stats = %+v complete = %v", stats, fileutil.IsComplete(dir))
	}
}
