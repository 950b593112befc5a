package config

// StageRoots returns the input and output roots a stage reads and writes.
// Unknown stages return empty paths.
func (c *Config) StageRoots(stage string) (input, output string) {
	switch stage {
	case StagePacketize:
		return c.Paths.SourceRoot, c.Paths.FeaturesRoot
	case StageShots:
		return c.Paths.FeaturesRoot, c.Paths.ShotFeaturesRoot
	case StageAggregate:
		return c.Paths.FeaturesRoot, c.Paths.AggFeaturesRoot
	}
	return "", ""
}
