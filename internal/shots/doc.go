// Package shots detects shot boundaries in a merged feature set.
//
// Adjacent frames are compared by cosine similarity, edges below the
// threshold are transitions, and the midpoint between consecutive
// transitions is taken as the representative frame of the shot between
// them. The selected frames are then packetized like any other feature
// stream.
package shots
