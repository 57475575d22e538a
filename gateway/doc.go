// Package gateway exposes the ingestion HTTP surface. Device agents and
// cloud sync workers push record batches to POST /api/ingest; the
// gateway feeds them through the processor and answers with per-batch
// outcome counts so the sender knows what to retry.
//
// An unknown source/stream pair rejects the whole batch with 400 before
// any record is processed. Everything else is per-record: a rejected or
// failed record never blocks its batchmates.
package gateway
