// Package main hosts the scenepack CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the pipeline stages (packetize, shots,
// aggregate, or all of them with run), reports ledger history, cleans
// interrupted outputs, shows the daily log, checks readiness, and scaffolds
// configuration. It centralizes configuration resolution, logger
// construction and ledger access so subcommands can focus on presentation.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
