// Package vector provides an in-memory vector index with brute-force cosine
// search and durable persistence.
//
// An index owns two artifacts on disk that share a base path: a raw vector
// file and a fragment metadata file. The pair is written atomically and
// loaded together; either file alone is an error, never a silently smaller
// index.
package vector
