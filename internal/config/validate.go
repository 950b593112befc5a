package config

import (
	"fmt"
	"strings"

	"scenepack/internal/services"
)

// Stage names accepted by ValidateStage.
const (
	StagePacketize = "packetize"
	StageShots     = "shots"
	StageAggregate = "aggregate"
)

// Stages lists every pipeline stage in run order.
func Stages() []string {
	return []string{StagePacketize, StageShots, StageAggregate}
}

// sectionStages maps a TOML section onto the stages that read it. Sections
// absent from the map are global.
var sectionStages = map[string][]string{
	"packets":     {StagePacketize, StageShots},
	"shots":       {StageShots},
	"aggregation": {StageAggregate},
}

// Validate ensures the global sections are usable.
func (c *Config) Validate() error {
	var problems []string
	if c.Workflow.Workers < 1 {
		problems = append(problems, "workflow.workers must be at least 1")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not recognized", c.Logging.Level))
	}
	if c.Logging.RetentionDays < 0 {
		problems = append(problems, "logging.retention_days must not be negative")
	}
	if c.Ledger.Enabled && strings.TrimSpace(c.Ledger.Path) == "" {
		problems = append(problems, "ledger.path or paths.log_dir must be set when ledger.enabled is true")
	}
	return configError(problems)
}

// ValidateStage reports the problems that prevent stage from running: unknown
// keys in global sections or in sections the stage reads, and the stage's own
// required settings. A typo in one stage's section never blocks another stage.
func (c *Config) ValidateStage(stage string) error {
	var problems []string
	for _, key := range c.unknownKeys {
		if keyAffects(key, stage) {
			problems = append(problems, fmt.Sprintf("unknown key %q", key))
		}
	}

	switch stage {
	case StagePacketize:
		problems = append(problems, requirePath("paths.source_root", c.Paths.SourceRoot)...)
		problems = append(problems, requirePath("paths.features_root", c.Paths.FeaturesRoot)...)
		problems = append(problems, c.validatePacketSize()...)
	case StageShots:
		problems = append(problems, requirePath("paths.features_root", c.Paths.FeaturesRoot)...)
		problems = append(problems, requirePath("paths.shot_features_root", c.Paths.ShotFeaturesRoot)...)
		problems = append(problems, c.validatePacketSize()...)
		problems = append(problems, c.validateThreshold()...)
	case StageAggregate:
		problems = append(problems, requirePath("paths.features_root", c.Paths.FeaturesRoot)...)
		problems = append(problems, requirePath("paths.agg_features_root", c.Paths.AggFeaturesRoot)...)
		problems = append(problems, c.validateMethods()...)
	default:
		problems = append(problems, fmt.Sprintf("unknown stage %q", stage))
	}
	return configError(problems)
}

func keyAffects(key, stage string) bool {
	section, _, nested := strings.Cut(key, ".")
	if !nested {
		return true
	}
	stages, ok := sectionStages[section]
	if !ok {
		return true
	}
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}

func requirePath(key, value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{key + " is required"}
	}
	return nil
}

func (c *Config) validatePacketSize() []string {
	if c.Packets.PacketSize < 1 {
		return []string{fmt.Sprintf("packets.packet_size must be positive, got %d", c.Packets.PacketSize)}
	}
	return nil
}

func (c *Config) validateThreshold() []string {
	if c.Shots.Threshold == nil {
		return []string{"shots.threshold is required"}
	}
	if t := *c.Shots.Threshold; t < -1 || t > 1 {
		return []string{fmt.Sprintf("shots.threshold must be between -1 and 1, got %v", t)}
	}
	return nil
}

func (c *Config) validateMethods() []string {
	if len(c.Aggregation.Methods) == 0 {
		return []string{"aggregation.methods must name at least one of Max, Mean"}
	}
	var problems []string
	for _, method := range c.Aggregation.Methods {
		if method != MethodMax && method != MethodMean {
			problems = append(problems, fmt.Sprintf("aggregation.methods: unsupported method %q", method))
		}
	}
	return problems
}

// Threshold returns the configured shot threshold; callers run ValidateStage first.
func (c *Config) Threshold() float64 {
	if c.Shots.Threshold == nil {
		return 0
	}
	return *c.Shots.Threshold
}

func configError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", services.ErrConfiguration, strings.Join(problems, "; "))
}
