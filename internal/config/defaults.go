package config

const (
	defaultLogDir           = "~/.local/share/scenepack/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultPacketSize       = 25
	defaultWorkers          = 1
	defaultLedgerEnabled    = true
	defaultLedgerFile       = "ledger.db"
	defaultConfigPath       = "~/.config/scenepack/config.toml"
	projectConfigFile       = "scenepack.toml"
)

// Aggregation method names as they appear in aggregated feature files.
const (
	MethodMax  = "Max"
	MethodMean = "Mean"
)

// Default returns a Config populated with repository defaults. The shot
// threshold and the stage roots have no default and must be configured.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Packets: Packets{
			PacketSize: defaultPacketSize,
		},
		Aggregation: Aggregation{
			Methods: []string{MethodMax, MethodMean},
		},
		Workflow: Workflow{
			Workers: defaultWorkers,
		},
		Ledger: Ledger{
			Enabled: defaultLedgerEnabled,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

// Float returns a pointer to v, for building configs in code.
func Float(v float64) *float64 {
	return &v
}
