package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "packet0001.json")

	content := []byte(`[{"frameId":"frame0000000","features":[1]}]`)
	if err := WriteFileAtomic(dst, content, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be renamed away, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.json")
	if err := WriteFileAtomic(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(dst, []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "absent", "out.json")
	if err := WriteFileAtomic(dst, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestMarkComplete(t *testing.T) {
	dir := t.TempDir()
	if IsComplete(dir) {
		t.Fatal("fresh directory must not be complete")
	}
	if err := MarkComplete(dir); err != nil {
		t.Fatal(err)
	}
	if !IsComplete(dir) {
		t.Fatal("expected directory to be complete")
	}
}

func TestIsTemp(t *testing.T) {
	if !IsTemp("/x/.tmp-packet0001.json-123") {
		t.Fatal("expected temp name to be detected")
	}
	if IsTemp("packet0001.json") {
		t.Fatal("packet file is not a temp file")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := Exists(dir)
	if err != nil || !ok {
		t.Fatalf("Exists(dir) = %v, %v", ok, err)
	}
	ok, err = Exists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
}
