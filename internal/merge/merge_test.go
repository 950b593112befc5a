package merge_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"scenepack/internal/features"
	"scenepack/internal/fileutil"
	"scenepack/internal/merge"
	"scenepack/internal/services"
	"scenepack/internal/testsupport"
)

func frame(id string, v ...float32) features.FrameFeature {
	return features.FrameFeature{FrameID: id, Features: v}
}

func frameIDs(set features.FeatureSet) []string {
	ids := make([]string, len(set))
	for i, rec := range set {
		ids[i] = rec.FrameID
	}
	return ids
}

func TestFolderMergesInNumericOrder(t *testing.T) {
	dir := t.TempDir()
	// Lexical listing order is packet10, packet2, packet9.
	testsupport.WriteRaw(t, dir, "packet10.json", []byte(`[{"frameId":"c","features":[3]}]`))
	testsupport.WriteRaw(t, dir, "packet2.json", []byte(`[{"frameId":"a","features":[1]}]`))
	testsupport.WriteRaw(t, dir, "packet9.json", []byte(`[{"frameId":"b","features":[2]}]`))
	testsupport.WriteRaw(t, dir, fileutil.CompletionMarker, nil)
	testsupport.WriteRaw(t, dir, "summary.json.bak", []byte("x"))

	result, err := merge.Folder(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if got := frameIDs(result.Set); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("merge order = %v", got)
	}
	if result.Packets != 3 || result.Corrupt != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestFolderRoundTripsPacketizedOutput(t *testing.T) {
	dir := t.TempDir()
	set := testsupport.Frames(7, []float32{0.1, 0.2}, []float32{0.3, 0.4})
	for i := 0; i < 7; i += 3 {
		end := min(i+3, 7)
		testsupport.WritePacket(t, dir, i/3+1, set[i:end])
	}

	result, err := merge.Folder(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if !slices.Equal(frameIDs(result.Set), frameIDs(set)) {
		t.Fatalf("merged ids = %v", frameIDs(result.Set))
	}
	if result.Packets != 3 {
		t.Fatalf("packets = %d", result.Packets)
	}
}

func TestFolderSkipsCorruptPacketWithOneWarning(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePacket(t, dir, 1, features.FeatureSet{frame("a", 1)})
	testsupport.WriteRaw(t, dir, "packet0002.json", []byte(`[{"frameId":"b","features":[`))
	testsupport.WritePacket(t, dir, 3, features.FeatureSet{frame("c", 3)})
	recorder, logger := testsupport.NewLogRecorder()

	result, err := merge.Folder(context.Background(), dir, logger)
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if got := frameIDs(result.Set); !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("merged ids = %v", got)
	}
	if result.Corrupt != 1 || result.Packets != 2 {
		t.Fatalf("result = %+v", result)
	}
	warnings := recorder.WithAttr("event_type", "corrupt_packet")
	if len(warnings) != 1 {
		t.Fatalf("corrupt packet warnings = %d, want 1", len(warnings))
	}
	if warnings[0].Attrs["packet"] != "packet0002.json" {
		t.Fatalf("warning names %q", warnings[0].Attrs["packet"])
	}
}

func TestFolderAllCorruptIsEmpty(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteRaw(t, dir, "packet0001.json", []byte("not json"))

	result, err := merge.Folder(context.Background(), dir, nil)
	if !errors.Is(err, services.ErrEmptyFeatureSet) {
		t.Fatalf("error = %v, want empty feature set", err)
	}
	if result.Set.Len() != 0 || result.Corrupt != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestFolderEmptyDirectory(t *testing.T) {
	if _, err := merge.Folder(context.Background(), t.TempDir(), nil); !errors.Is(err, services.ErrEmptyFeatureSet) {
		t.Fatalf("error = %v, want empty feature set", err)
	}
}

func TestFolderMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	if _, err := merge.Folder(context.Background(), missing, nil); !errors.Is(err, services.ErrMissingInputDirectory) {
		t.Fatalf("error = %v, want missing input directory", err)
	}
}

func TestFolderCanceled(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePacket(t, dir, 1, features.FeatureSet{frame("a", 1)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := merge.Folder(ctx, dir, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
