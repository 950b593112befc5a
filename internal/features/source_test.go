package features_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"scenepack/internal/features"
	"scenepack/internal/services"
)

func TestDirSourceReadsFilesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "part-0002.jsonl"),
		`{"frameId":"frame0000002","features":[0.3,0.4]}`,
	)
	writeLines(t, filepath.Join(dir, "part-0001.jsonl"),
		`{"frameId":"frame0000000","features":[0.1,0.2]}`,
		``,
		`{"features":[0.2,0.3]}`,
	)
	writeLines(t, filepath.Join(dir, "notes.txt"), "ignored")

	src, err := features.OpenDirSource(dir)
	if err != nil {
		t.Fatalf("OpenDirSource: %v", err)
	}
	defer src.Close()
	if !src.HasRecords() {
		t.Fatal("expected record files")
	}

	var ids []string
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		ids = append(ids, rec.FrameID)
	}
	want := []string{"frame0000000", "frame0000001", "frame0000002"}
	if len(ids) != len(want) {
		t.Fatalf("got ids %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got ids %v, want %v", ids, want)
		}
	}
}

func TestDirSourceReportsCorruptLineAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "frames.jsonl"),
		`{"frameId":"frame0000000","features":[1,2]}`,
		`{"frameId":`,
		`{"frameId":"frame0000002"}`,
		`{"frameId":"frame0000003","features":[3,4]}`,
		`{"frameId":"frame0000004","features":[null,4]}`,
		`{"frameId":"frame0000005","features":[1e39,4]}`,
	)
	src, err := features.OpenDirSource(dir)
	if err != nil {
		t.Fatalf("OpenDirSource: %v", err)
	}
	defer src.Close()

	var good, corrupt int
	for {
		_, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, services.ErrCorruptPacket) {
			corrupt++
			continue
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		good++
	}
	if good != 2 || corrupt != 4 {
		t.Fatalf("good=%d corrupt=%d, want 2 and 4", good, corrupt)
	}
}

func TestOpenDirSourceMissingFolder(t *testing.T) {
	_, err := features.OpenDirSource(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, services.ErrMissingInputDirectory) {
		t.Fatalf("expected missing input directory, got %v", err)
	}
}

func TestSliceSource(t *testing.T) {
	src := features.NewSliceSource([]features.FrameFeature{{FrameID: "a"}, {FrameID: "b"}})
	for _, want := range []string{"a", "b"} {
		rec, err := src.Next()
		if err != nil || rec.FrameID != want {
			t.Fatalf("Next = %q, %v; want %q", rec.FrameID, err, want)
		}
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	var data []byte
	for _, line := range lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
