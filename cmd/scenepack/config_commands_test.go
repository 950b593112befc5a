package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateScopesUnknownKeys(t *testing.T) {
	env := setupCLITestEnv(t)
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	patched := strings.Replace(string(data), "[aggregation]\n", "[aggregation]\nbogus = 1\n", 1)
	if patched == string(data) {
		t.Fatalf("no [aggregation] table in %q", data)
	}
	if err := os.WriteFile(env.configPath, []byte(patched), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, []string{"config", "validate", "shots"}, env.configPath); err != nil {
		t.Fatalf("shots should validate: %v", err)
	}
	out, _, err := runCLI(t, []string{"config", "validate", "aggregate"}, env.configPath)
	if err == nil {
		t.Fatal("aggregate should fail on the unknown key")
	}
	requireContains(t, out, "aggregation.bogus")
}
