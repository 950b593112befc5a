package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scenepack/internal/fileutil"
	"scenepack/internal/logging"
	"scenepack/internal/packet"
)

// CleanResult contains the outcome of a cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanIncomplete removes output folders of root that lack a completion
// marker, together with temp files left at the top level. With dryRun set it
// only reports what would be removed.
func CleanIncomplete(ctx context.Context, root string, dryRun bool, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: ctx.Err()})
			return result
		}
		name := entry.Name()
		path := filepath.Join(root, name)
		switch {
		case entry.IsDir():
			if strings.HasPrefix(name, ".") || fileutil.IsComplete(path) {
				continue
			}
		case fileutil.IsTemp(name):
		default:
			continue
		}

		if dryRun {
			result.Removed = append(result.Removed, path)
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logger.Warn("failed to remove incomplete output",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check output root permissions"),
				logging.String(logging.FieldImpact, "folder is rebuilt on the next run"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed incomplete output",
			logging.String("path", path),
			logging.String(logging.FieldEventType, "cleanup"),
		)
	}

	return result
}

// DirInfo contains metadata about an output folder.
type DirInfo struct {
	Name     string
	Path     string
	ModTime  time.Time
	Size     int64
	Packets  int
	Complete bool
}

// ListDirectories returns the output folders of root with their metadata.
// A missing root yields no folders.
func ListDirectories(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		dirPath := filepath.Join(root, entry.Name())
		size, packets := dirUsage(dirPath)

		dirs = append(dirs, DirInfo{
			Name:     entry.Name(),
			Path:     dirPath,
			ModTime:  info.ModTime(),
			Size:     size,
			Packets:  packets,
			Complete: fileutil.IsComplete(dirPath),
		})
	}

	return dirs, nil
}

// dirUsage sums file sizes below path and counts its packet files.
func dirUsage(path string) (int64, int) {
	var size int64
	var packets int
	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if info.IsDir() {
			return nil
		}
		size += info.Size()
		if filepath.Dir(p) == path {
			if _, ok := packet.ParseIndex(info.Name()); ok {
				packets++
			}
		}
		return nil
	})
	return size, packets
}
