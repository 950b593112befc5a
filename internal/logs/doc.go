// Package logs reads the JSON log files written by internal/logging.
//
// Tail streams a file with bounded memory usage, supports negative offsets
// for "last N lines" reads, and powers `scenepack logs --follow`. Entries
// parse the standardized fields (run_id, movie, stage, event_type) so the CLI
// can narrow a day's log to one run or one movie.
package logs
