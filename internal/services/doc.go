// Package services defines shared utilities consumed by the pipeline stages.
//
// Key responsibilities:
//   - Context helpers that stamp movie names, stage names, and run identifiers
//     for logging and the run ledger.
//   - Structured error markers plus the Wrap helper that scope failures to the
//     smallest unit (one packet, one movie, one stage) that can contain them.
//
// Use these helpers when wiring new stage logic so error classification and
// observability stay uniform across the pipeline.
package services
