// Package workflow runs a pipeline stage over every movie folder of the
// stage's input root.
//
// The Runner validates the stage configuration, runs preflight checks,
// acquires an advisory lock on the output root and discovers the movie
// folders to process. Folders are fed to a worker pool sized by
// workflow.workers; each worker runs the stage's unit of work for one folder
// and records the per-movie state machine in the run ledger when it is
// enabled.
//
// Failures are scoped to the smallest unit that can absorb them: a corrupt
// packet costs its frames, a movie failure costs that movie, and only stage
// preconditions (configuration, missing input root, lock contention) abort
// the run. Every folder's outcome lands in the returned Summary.
package workflow
