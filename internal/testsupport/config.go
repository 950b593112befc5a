package testsupport

import (
	"path/filepath"
	"testing"

	"scenepack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every stage validates; options adjust individual settings.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceRoot = filepath.Join(base, "extracted")
	cfgVal.Paths.FeaturesRoot = filepath.Join(base, "features")
	cfgVal.Paths.ShotFeaturesRoot = filepath.Join(base, "shot_features")
	cfgVal.Paths.AggFeaturesRoot = filepath.Join(base, "agg_features")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Ledger.Path = filepath.Join(base, "logs", "ledger.db")
	cfgVal.Shots.Threshold = config.Float(0.7)

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPacketSize overrides packets.packet_size.
func WithPacketSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Packets.PacketSize = size
	}
}

// WithThreshold overrides shots.threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Shots.Threshold = config.Float(threshold)
	}
}

// WithWorkers overrides workflow.workers.
func WithWorkers(workers int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.Workers = workers
	}
}

// WithLegacySkip enables workflow.legacy_skip.
func WithLegacySkip() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.LegacySkip = true
	}
}

// WithMethods overrides aggregation.methods.
func WithMethods(methods ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Aggregation.Methods = methods
	}
}

// WithoutLedger disables the run ledger.
func WithoutLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceRoot)
}
