package preflight

import (
	"context"
	"fmt"
	"strings"

	"scenepack/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for the given config: the roots of each stage
// that validates, the log directory, and the ledger database when enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, stage := range config.Stages() {
		if err := cfg.ValidateStage(stage); err != nil {
			results = append(results, Result{Name: stageLabel(stage) + " config", Detail: err.Error()})
			continue
		}
		results = append(results, CheckStage(cfg, stage)...)
	}

	results = append(results, CheckWritableRoot("Log directory", cfg.Paths.LogDir))

	if cfg.Ledger.Enabled {
		results = append(results, CheckLedger(ctx, cfg.Ledger.Path))
	}
	return results
}

// CheckStage checks the input and output roots of stage.
func CheckStage(cfg *config.Config, stage string) []Result {
	input, output := cfg.StageRoots(stage)
	label := stageLabel(stage)
	return []Result{
		CheckReadable(label+" input", input),
		CheckWritableRoot(label+" output", output),
	}
}

// Failures joins the details of every failed result, or returns nil.
func Failures(results []Result) error {
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; "))
}

func stageLabel(stage string) string {
	if stage == "" {
		return "Stage"
	}
	return strings.ToUpper(stage[:1]) + stage[1:]
}
