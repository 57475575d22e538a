// Package dedup decides whether a normalized record repeats one the
// pipeline has already accepted, under the strategy selected by the
// stream schema:
//
//   - none: every record is authoritative, nothing is ever a duplicate.
//   - single: at most one record per exact tuple of the primary timestamp
//     and all required fields; used for point-in-time samples with no
//     stable external id.
//   - unique_key: at most one record per tuple of the schema's named key
//     fields (e.g. a message's external id). A record missing a key field
//     is rejected as an upstream contract violation, not dropped.
//   - content_hash: key is a hash over the record's content, so an
//     in-place revision upstream (an edited page) hashes differently and
//     becomes a new version rather than a duplicate.
//
// # Canonical serialization (version 1)
//
// content_hash requires a byte-stable rendering of the record. Version 1,
// which must never change silently (a change breaks dedup continuity
// across stored history), is:
//
//	v1 <US> source/stream [<US> column=JSON(value)]... [<US> raw_data=JSON(raw)]
//
// where <US> is the unit separator 0x1F, columns appear in schema
// declaration order skipping absent values, values are encoded with
// encoding/json (map keys sorted by the encoder), and time.Time values
// render as RFC3339Nano UTC. The envelope (record id, source id,
// created_at, updated_at) and the primary timestamp are excluded, so two
// records with identical content but different ingestion metadata hash
// identically. The SHA-256 of those bytes is the dedup key.
//
// # Index atomicity
//
// The index is the only state shared by concurrent workers of one stream.
// Claim is a single atomic first-write-wins operation (JetStream KV
// Create, or a mutex-guarded map in memory), so of any set of concurrent
// claims for one key exactly one wins; the rest observe a duplicate. A
// claim is released if persistence later fails, letting a retried record
// through.
package dedup
