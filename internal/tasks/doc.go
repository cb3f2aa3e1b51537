// package tasks implements playlist sync operations between music catalog services.
//
// The core abstraction is [PlaylistEngine], which orchestrates a full playlist
// sync: fetch the source track list, resolve create-vs-update semantics on the
// destination, drive batched concurrent matching through the match package,
// deduplicate against existing destination content, and write back. Operations
// emit progress updates via channels for non-blocking status reporting to
// CLI/UI/server layers.
//
// Matching runs in fixed-size batches; within a batch every track is matched
// concurrently, batches run strictly in source order, and each batch is
// followed by a cooldown tuned to the destination service's rate limits.
package tasks
