package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scenepack/internal/config"
	"scenepack/internal/logging"
	"scenepack/internal/services"
)

func TestNewFromConfigWritesDailyFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger, path, err := logging.NewFromConfig(&cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if want := logging.LogFilePath(cfg.Paths.LogDir, time.Now()); path != want {
		t.Fatalf("log path = %q, want %q", path, want)
	}
	logger.Debug("debug message")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"debug message"`) {
		t.Fatalf("log file missing JSON record: %q", content)
	}
}

func TestConsoleLoggerSubjectAndSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(services.WithMovie(context.Background(), "MovieShots12"), "shots")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "merge")).Info("merged packets", logging.Int("packets", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO [merge] MovieShots12 (shots): merged packets packets=3") {
		t.Fatalf("unexpected console line %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("info logs should not carry caller information: %q", line)
	}

	buf.Reset()
	debugLogger, err := logging.New(logging.Options{Format: "console", Level: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	debugLogger.Debug("with caller")
	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("debug logs should carry caller information: %q", buf.String())
	}
}

func TestJSONLoggerContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(services.WithStage(context.Background(), "aggregate"), "run-1")
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if record[logging.FieldStage] != "aggregate" || record[logging.FieldRunID] != "run-1" {
		t.Fatalf("context fields missing: %v", record)
	}
	if record["level"] != "info" {
		t.Fatalf("level = %v, want info", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "skipping packet", "corrupt_packet",
		logging.String(logging.FieldImpact, "frames missing"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldEventType] != "corrupt_packet" {
		t.Fatalf("event_type = %v", record[logging.FieldEventType])
	}
	if record[logging.FieldImpact] != "frames missing" {
		t.Fatalf("impact overridden: %v", record[logging.FieldImpact])
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error_hint")
	}
}

func TestPruneLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "scenepack-20200101.log")
	keep := filepath.Join(dir, "scenepack-20200102.log")
	today := logging.LogFilePath(dir, time.Now())
	stale := filepath.Join(dir, "scenepack-manual.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, keep, today, stale, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	if got := logging.PruneLogs(nil, dir, 0, ""); got != 0 {
		t.Fatalf("retention 0 should not prune, removed %d", got)
	}

	removed := logging.PruneLogs(nil, dir, 30, keep)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	for _, path := range []string{old, stale} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s pruned, err=%v", path, err)
		}
	}
	for _, path := range []string{keep, today, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}
