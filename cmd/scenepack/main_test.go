package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"scenepack/internal/aggregate"
	"scenepack/internal/config"
	"scenepack/internal/fileutil"
	"scenepack/internal/services"
	"scenepack/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	t.Setenv("HOME", filepath.Join(testsupport.BaseDir(cfg), "home"))
	configPath := filepath.Join(testsupport.BaseDir(cfg), "scenepack.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRunCommandProcessesEveryStage(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithPacketSize(2))
	testsupport.WriteSourceFolder(t, env.cfg.Paths.SourceRoot, "movie_shots_12",
		testsupport.Frames(6, []float32{1, 0}, []float32{1, 0}, []float32{0, 1}))

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, stage := range config.Stages() {
		requireContains(t, out, "Stage "+stage)
	}
	requireContains(t, out, "MovieShots12 (movie_shots_12)")

	if !fileutil.IsComplete(filepath.Join(env.cfg.Paths.ShotFeaturesRoot, "MovieShots12")) {
		t.Fatal("shot folder not completed")
	}
	if ok, _ := aggregate.Exists(env.cfg.Paths.AggFeaturesRoot, "MovieShots12"); !ok {
		t.Fatal("aggregate file missing")
	}
}

func TestPacketizeJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteSourceFolder(t, env.cfg.Paths.SourceRoot, "movie_a", testsupport.Frames(3, []float32{1}))

	out, _, err := runCLI(t, []string{"--json", "packetize"}, env.configPath)
	if err != nil {
		t.Fatalf("packetize: %v", err)
	}
	var summaries []struct {
		Stage  string `json:"stage"`
		Totals struct {
			Processed int `json:"processed"`
		} `json:"totals"`
		Outcomes []struct {
			Movie   string `json:"movie"`
			Records int    `json:"records"`
		} `json:"outcomes"`
	}
	if err := json.Unmarshal([]byte(out), &summaries); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(summaries) != 1 || summaries[0].Stage != config.StagePacketize || summaries[0].Totals.Processed != 1 {
		t.Fatalf("summaries = %+v", summaries)
	}
	if got := summaries[0].Outcomes[0]; got.Movie != "MovieA" || got.Records != 3 {
		t.Fatalf("outcome = %+v", got)
	}
}

func TestMissingSourceRootFailsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"packetize"}, env.configPath)
	if !errors.Is(err, services.ErrMissingInputDirectory) {
		t.Fatalf("packetize error = %v, want missing input directory", err)
	}
}

func TestMovieFailureDoesNotFailCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	broken := testsupport.Frames(2, []float32{1, 2}, []float32{1, 2, 3})
	testsupport.WriteSourceFolder(t, env.cfg.Paths.SourceRoot, "broken", broken)

	if _, _, err := runCLI(t, []string{"packetize"}, env.configPath); err != nil {
		t.Fatalf("packetize: %v", err)
	}
	out, _, err := runCLI(t, []string{"aggregate"}, env.configPath)
	if err != nil {
		t.Fatalf("aggregate must report movie failures without failing: %v", err)
	}
	requireContains(t, out, "dimension_mismatch")
}

func TestStatusListsRunsAndMovies(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteSourceFolder(t, env.cfg.Paths.SourceRoot, "movie_a", testsupport.Frames(3, []float32{1}))
	if _, _, err := runCLI(t, []string{"packetize"}, env.configPath); err != nil {
		t.Fatalf("packetize: %v", err)
	}

	out, _, err := runCLI(t, []string{"--json", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var runs []struct {
		ID     string `json:"id"`
		Stage  string `json:"stage"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs %q: %v", out, err)
	}
	if len(runs) != 1 || runs[0].Stage != config.StagePacketize || runs[0].Status != "completed" {
		t.Fatalf("runs = %+v", runs)
	}

	out, _, err = runCLI(t, []string{"status", runs[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("status run: %v", err)
	}
	requireContains(t, out, "MovieA")
	requireContains(t, out, "packetized")

	out, _, err = runCLI(t, []string{"status", "--outputs"}, env.configPath)
	if err != nil {
		t.Fatalf("status --outputs: %v", err)
	}
	requireContains(t, out, "MovieA")

	if _, _, err := runCLI(t, []string{"status", "ffffffff"}, env.configPath); err == nil {
		t.Fatal("expected unknown run id to fail")
	}
}

func TestCleanRemovesIncompleteFolders(t *testing.T) {
	env := setupCLITestEnv(t)
	partial := filepath.Join(env.cfg.Paths.FeaturesRoot, "Partial")
	testsupport.WritePacket(t, partial, 1, testsupport.Frames(1, []float32{1}))

	out, _, err := runCLI(t, []string{"clean", "--dry-run", "packetize"}, env.configPath)
	if err != nil {
		t.Fatalf("clean --dry-run: %v", err)
	}
	requireContains(t, out, "Would remove 1")
	if _, err := os.Stat(partial); err != nil {
		t.Fatalf("dry run removed folder: %v", err)
	}

	out, _, err = runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed 1")
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatal("incomplete folder should be removed")
	}
}

func TestCleanRefusesWithLegacySkip(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLegacySkip())
	if _, _, err := runCLI(t, []string{"clean"}, env.configPath); err == nil {
		t.Fatal("expected clean to refuse when legacy_skip is set")
	}
}

func TestDoctorReportsMissingSourceRoot(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail without a source root")
	}
	requireContains(t, out, "Packetize input")
	requireContains(t, out, "[ERROR]")

	if err := os.MkdirAll(env.cfg.Paths.SourceRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(env.cfg.Paths.FeaturesRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Run ledger")
}
