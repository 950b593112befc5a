// Package ledger records scenepack runs and the per-movie state machine in
// SQLite.
//
// Every batch run gets a row keyed by its run id; every movie folder the run
// touches gets a row whose status follows the pipeline (discovered, packetized,
// merged, scored, segmented, shot_packetized, aggregated, skipped, failed),
// and every status change is appended to a transition log. The ledger is a
// diagnostic record: skip decisions are always taken from the output folders,
// never from here.
//
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package ledger
