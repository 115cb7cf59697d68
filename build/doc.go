// Package build turns an ordered fragment corpus into a persisted vector
// index, surviving the failure modes of a remote embedding service.
//
// The Builder walks the corpus in fixed-size batches, pacing requests
// through a rate limiter and retrying transient provider failures with
// exponential backoff. Progress is checkpointed to durable storage every N
// batches so an interrupted build resumes from the last completed batch
// instead of starting over, and any abort leaves emergency artifacts behind
// for later resumption.
package build
