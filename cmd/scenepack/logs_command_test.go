package main

import (
	"strings"
	"testing"

	"scenepack/internal/testsupport"
)

func TestLogsCommandFiltersEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteSourceFolder(t, env.cfg.Paths.SourceRoot, "heat",
		testsupport.Frames(2, []float32{1, 0}))

	if _, _, err := runCLI(t, []string{"packetize"}, env.configPath); err != nil {
		t.Fatalf("packetize: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "500"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "stage started")
	requireContains(t, out, "[workflow]")

	out, _, err = runCLI(t, []string{"logs", "--run", "no-such-run"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no entries for unknown run, got %q", out)
	}
}

func TestLogsCommandRejectsBadDay(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"logs", "--day", "yesterday"}, env.configPath)
	if err == nil {
		t.Fatal("expected invalid day to fail")
	}
	requireContains(t, err.Error(), "invalid --day")
}
