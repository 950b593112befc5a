// Package packet encodes and decodes packet files: ordered, size-bounded
// batches of frame feature records persisted as JSON arrays of
// {"frameId", "features"} objects with six-decimal precision.
//
// Packet files are named packet0001.json, packet0002.json, ... and must be
// read back in numeric order of that suffix, never in directory listing order.
package packet
