package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CompletionMarker is written into an output folder once every file of the
// folder has been durably flushed.
const CompletionMarker = ".complete"

// TempPrefix marks in-flight files written by WriteFileAtomic.
const TempPrefix = ".tmp-"

// WriteFileAtomic writes data to a temp file beside path, fsyncs it, and
// renames it into place. Readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, TempPrefix+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// SyncDir flushes directory metadata (created and renamed entries).
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}

// MarkComplete writes the completion marker into dir after syncing the
// directory so the marker never precedes the files it vouches for.
func MarkComplete(dir string) error {
	if err := SyncDir(dir); err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	if err := WriteFileAtomic(filepath.Join(dir, CompletionMarker), nil, 0o644); err != nil {
		return fmt.Errorf("write completion marker: %w", err)
	}
	return SyncDir(dir)
}

// IsComplete reports whether dir carries a completion marker.
func IsComplete(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, CompletionMarker))
	return err == nil && info.Mode().IsRegular()
}

// IsTemp reports whether name is an in-flight WriteFileAtomic file.
func IsTemp(name string) bool {
	return strings.HasPrefix(filepath.Base(name), TempPrefix)
}

// Exists reports whether path exists, distinguishing absence from stat errors.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
