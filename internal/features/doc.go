// Package features holds the frame-level data model shared by every pipeline
// stage: one FrameFeature per extracted frame, the ordered FeatureSet of a
// movie, and the Source boundary through which an external feature extractor
// hands records to the packetizer.
//
// Records are never mutated after creation; stages only filter or reduce them.
package features
