package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scenepack/internal/config"
)

// LogFilePattern matches the daily log files written under the log directory.
const LogFilePattern = "scenepack-*.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human or JSON output per Format. Defaults to stdout.
	Console io.Writer
	// FilePath, when set, additionally receives JSON lines.
	FilePath    string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var consoleHandler slog.Handler
	switch format {
	case "json":
		consoleHandler = newJSONHandler(console, levelVar, addSource)
	case "console":
		consoleHandler = newPrettyHandler(console, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	var fileHandler slog.Handler
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := ensureLogDir(path); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		fileHandler = newJSONHandler(file, levelVar, addSource)
	}

	return slog.New(newFanoutHandler(consoleHandler, fileHandler)), nil
}

// NewFromConfig creates a logger using application config defaults. Console
// output goes to console, or stdout when nil. The returned path is the log
// file in use, empty when file logging is off.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, string, error) {
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console", Console: console})
		return logger, "", err
	}

	var logPath string
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		logPath = LogFilePath(dir, time.Now())
	}
	logger, err := New(Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Console:  console,
		FilePath: logPath,
	})
	if err != nil {
		return nil, "", err
	}
	return logger, logPath, nil
}

// LogFilePath returns the daily log file inside dir for the given day.
func LogFilePath(dir string, day time.Time) string {
	return filepath.Join(dir, "scenepack-"+day.Format(logFileDayLayout)+".log")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
