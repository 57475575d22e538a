// Package processor runs records through the ingestion pipeline:
// normalize, validate, dedup-check, route, persist.
//
// Each record moves through the stages in order and every path out of
// the pipeline is classified: persisted, duplicate (an idempotent
// no-op), rejected (invalid data, never retried), or failed (storage
// trouble, safe to resend). Blob writes happen before the relational
// row so a crash between the two leaves an orphaned blob rather than a
// row pointing at nothing.
//
// A dedup claim is taken before any write and released if persistence
// fails, so a failed record can be resent without being mistaken for a
// duplicate.
package processor
