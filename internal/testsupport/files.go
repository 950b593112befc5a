package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"scenepack/internal/features"
	"scenepack/internal/packet"
)

// Frames builds n records of the given vectors, cycling through vectors when
// n exceeds their count. Frame ids follow features.FrameID.
func Frames(n int, vectors ...[]float32) features.FeatureSet {
	set := make(features.FeatureSet, 0, n)
	for i := 0; i < n; i++ {
		vec := vectors[i%len(vectors)]
		set = append(set, features.FrameFeature{
			FrameID:  features.FrameID(i),
			Features: append([]float32(nil), vec...),
		})
	}
	return set
}

// WriteSourceFolder writes records as a JSON Lines extractor dump at
// <root>/<name>/frames.jsonl and returns the folder path.
func WriteSourceFolder(t testing.TB, root, name string, records features.FeatureSet) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, "frames.jsonl"))
	if err != nil {
		t.Fatalf("create frames: %v", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			t.Fatalf("encode record: %v", err)
		}
	}
	return dir
}

// WritePacket writes records as packet<index>.json inside dir.
func WritePacket(t testing.TB, dir string, index int, records features.FeatureSet) string {
	t.Helper()

	data, err := packet.Encode(records)
	if err != nil {
		t.Fatalf("encode packet: %v", err)
	}
	return WriteRaw(t, dir, packet.FileName(index), data)
}

// WriteRaw writes data verbatim to dir/name.
func WriteRaw(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadPacket decodes a packet file, failing the test on error.
func ReadPacket(t testing.TB, path string) []features.FrameFeature {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	records, err := packet.Decode(data)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return records
}

// ListFiles returns the sorted file names in dir.
func ListFiles(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
