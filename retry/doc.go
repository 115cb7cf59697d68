// Package retry executes operations that may fail transiently, applying
// exponential backoff between attempts.
//
// Only failures marked with core.ErrTransient are retried. Everything else
// is fatal and returned after a single attempt. An operation still failing
// transiently when the attempt budget runs out is reported with
// core.ErrRetriesExhausted wrapping the final error, so callers can tell
// exhaustion apart from a fatal failure.
package retry
