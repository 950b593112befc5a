package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenepack/internal/config"
	"scenepack/internal/preflight"
	"scenepack/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableRoot_NotYetCreated(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	result := preflight.CheckWritableRoot("out", root)
	if !result.Passed {
		t.Fatalf("expected pass for creatable root, got: %s", result.Detail)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatal("check must not create the root")
	}
}

func TestCheckWritableRoot_Unconfigured(t *testing.T) {
	if result := preflight.CheckWritableRoot("out", " "); result.Passed {
		t.Fatal("expected failure for blank path")
	}
}

func TestCheckStage_MissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := preflight.CheckStage(cfg, config.StagePacketize)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	err := preflight.Failures(results)
	if err == nil || !strings.Contains(err.Error(), "Packetize input") {
		t.Fatalf("Failures = %v, want packetize input failure", err)
	}
}

func TestCheckLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	result := preflight.CheckLedger(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected pass for fresh ledger, got: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := preflight.RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_ReportsStageConfigProblems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Shots.Threshold = nil
	if err := os.MkdirAll(cfg.Paths.SourceRoot, 0o755); err != nil {
		t.Fatal(err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	var sawShots bool
	for _, r := range results {
		if r.Name == "Shots config" {
			sawShots = true
			if r.Passed {
				t.Fatal("shots config should fail without threshold")
			}
		}
		if r.Name == "Packetize input" && !r.Passed {
			t.Fatalf("packetize input should pass: %s", r.Detail)
		}
	}
	if !sawShots {
		t.Fatalf("missing shots config result in %+v", results)
	}
}
