package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logFileDayLayout = "20060102"

// PruneLogs removes daily log files in dir whose day is older than
// retentionDays and returns how many were removed. The day comes from the
// file name; files whose name does not parse fall back to their mtime. keep
// is never removed. retentionDays <= 0 disables pruning.
func PruneLogs(logger *slog.Logger, dir string, retentionDays int, keep string) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(dir, LogFilePattern))
	if err != nil {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep = absPath(keep)

	removed := 0
	for _, path := range matches {
		if keep != "" && absPath(path) == keep {
			continue
		}
		day, ok := logFileDay(path)
		if !ok {
			continue
		}
		if !day.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return removed
}

func logFileDay(path string) (time.Time, bool) {
	base := filepath.Base(path)
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, "scenepack-"), ".log")
	if day, err := time.ParseInLocation(logFileDayLayout, stamp, time.Local); err == nil {
		return day, true
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func absPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
