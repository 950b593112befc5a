// Package config loads, normalizes, and validates scenepack configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts) and reads TOML files strictly: unknown keys do not fail the load
// but are remembered so each stage can refuse to run when its own section is
// wrong. Global settings are checked by Validate; per-stage requirements by
// ValidateStage.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical method names, and clear validation errors.
package config
