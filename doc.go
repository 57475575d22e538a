// Package ariata is a personal data ingestion engine. Device agents
// and sync workers push batches of raw records (health samples,
// locations, messages, calendar events, audio recordings, notes,
// fitness activities); the engine normalizes each record against its
// stream schema, validates it, deduplicates it, and routes its fields
// between relational and blob storage.
//
// # Architecture
//
// One HTTP gateway feeds one pipeline:
//
//	┌─────────────────────────────────────┐
//	│           Gateway (HTTP)            │  /api/ingest batches
//	└──────────────────┬──────────────────┘
//	                   ↓
//	┌─────────────────────────────────────┐
//	│            Processor                │  normalize → validate
//	│   (per-stream normalizers + pool)   │  → dedup → route
//	└──────────┬───────────────┬──────────┘
//	           ↓               ↓
//	┌────────────────┐ ┌────────────────┐
//	│   Postgres     │ │  Object store  │  blob writes land first,
//	│ (stream tables)│ │ (NATS JetStream)│ then the referencing row
//	└────────────────┘ └────────────────┘
//
// The stream catalog (registry package) declares every accepted
// source/stream pair: its table, column types, validation rules,
// dedup strategy, and which fields route to blob storage.
//
// # Packages
//
// Pipeline:
//   - gateway: HTTP ingestion API
//   - processor: the record pipeline and per-source normalizers (source/...)
//   - registry: declarative stream catalog
//   - validate: schema validation of normalized records
//   - dedup: claim-based duplicate detection (NATS KV)
//   - router: field routing between relational and blob storage
//
// Infrastructure:
//   - storage/postgres: relational store (pgx)
//   - storage/objectstore: blob store (JetStream object store)
//   - natsclient: NATS connection, KV and object store buckets
//   - config: YAML configuration with environment overrides
//   - metric: Prometheus metrics
//   - errors: classified error handling
//
// Utilities:
//   - pkg/retry: retry policies with exponential backoff
//   - pkg/worker: bounded worker pools
//   - pkg/timestamp: epoch and timestamp parsing
package ariata
