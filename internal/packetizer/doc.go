// Package packetizer turns a stream of frame feature records into bounded,
// sequence-numbered packet files inside a resumable output folder.
//
// Records are buffered in memory and flushed whenever the buffer reaches the
// packet size and once more when the caller closes the stream, so a folder of
// N records always holds ceil(N/size) packets. A folder is considered done
// only once its completion marker exists; PrepareOutput turns that marker into
// the skip-if-already-processed contract every stage relies on.
package packetizer
