package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the stage roots and the log directory.
type Paths struct {
	SourceRoot       string `toml:"source_root"`
	FeaturesRoot     string `toml:"features_root"`
	ShotFeaturesRoot string `toml:"shot_features_root"`
	AggFeaturesRoot  string `toml:"agg_features_root"`
	LogDir           string `toml:"log_dir"`
}

// Packets controls packet sizing for every packetizing stage.
type Packets struct {
	PacketSize int `toml:"packet_size"`
}

// Shots contains the boundary detection threshold.
type Shots struct {
	// Threshold is nil when the key is absent from the file.
	Threshold *float64 `toml:"threshold"`
}

// Aggregation selects the statistics written per movie.
type Aggregation struct {
	Methods []string `toml:"methods"`
}

// Workflow contains batch scheduling settings.
type Workflow struct {
	Workers int `toml:"workers"`
	// LegacySkip treats an output folder without completion marker as done.
	LegacySkip bool `toml:"legacy_skip"`
}

// Ledger configures the SQLite run ledger.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for scenepack.
//
// Configuration sections by subsystem:
//   - Paths: stage input and output roots, log directory
//   - Packets: packet size shared by packetize and shots
//   - Shots: cosine similarity threshold
//   - Aggregation: statistics written per movie
//   - Workflow: worker count and legacy skip behaviour
//   - Ledger: SQLite run ledger
//   - Logging: log format, level, and retention
type Config struct {
	Paths       Paths       `toml:"paths"`
	Packets     Packets     `toml:"packets"`
	Shots       Shots       `toml:"shots"`
	Aggregation Aggregation `toml:"aggregation"`
	Workflow    Workflow    `toml:"workflow"`
	Ledger      Ledger      `toml:"ledger"`
	Logging     Logging     `toml:"logging"`

	unknownKeys []string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Unknown keys are kept for ValidateStage.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Parse decodes TOML data on top of the defaults without touching the filesystem.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decode(data []byte) error {
	decoder := toml.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(c)
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		for _, missing := range strict.Errors {
			c.unknownKeys = append(c.unknownKeys, strings.Join(missing.Key(), "."))
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// UnknownKeys lists dotted keys present in the file but not understood.
func (c *Config) UnknownKeys() []string {
	return append([]string(nil), c.unknownKeys...)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and the configured output roots.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.FeaturesRoot, c.Paths.ShotFeaturesRoot, c.Paths.AggFeaturesRoot} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
