package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAggregation()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.source_root", &c.Paths.SourceRoot},
		{"paths.features_root", &c.Paths.FeaturesRoot},
		{"paths.shot_features_root", &c.Paths.ShotFeaturesRoot},
		{"paths.agg_features_root", &c.Paths.AggFeaturesRoot},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

// normalizeAggregation maps method names onto their canonical casing and
// drops duplicates. Unrecognized names are kept for validation to report.
func (c *Config) normalizeAggregation() {
	seen := make(map[string]struct{}, len(c.Aggregation.Methods))
	methods := make([]string, 0, len(c.Aggregation.Methods))
	for _, method := range c.Aggregation.Methods {
		name := canonicalMethod(method)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		methods = append(methods, name)
	}
	c.Aggregation.Methods = methods
}

func canonicalMethod(method string) string {
	trimmed := strings.TrimSpace(method)
	switch strings.ToLower(trimmed) {
	case "max":
		return MethodMax
	case "mean":
		return MethodMean
	default:
		return trimmed
	}
}

func (c *Config) normalizeLedger() error {
	path := strings.TrimSpace(c.Ledger.Path)
	if path == "" {
		if c.Paths.LogDir == "" {
			return nil
		}
		c.Ledger.Path = filepath.Join(c.Paths.LogDir, defaultLedgerFile)
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	c.Ledger.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
