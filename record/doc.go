// Package record defines the two record shapes that flow through the
// pipeline: Raw, the untyped source-native payload handed to a stream
// processor, and Normalized, the typed result of mapping a Raw record onto
// a stream schema's column set.
//
// A Normalized record carries, beyond the schema columns: the primary
// timestamp, the raw_data catch-all holding every source field the
// normalizer did not map (unknown data is preserved, never discarded), and
// the envelope stamped by the processor (record id, source id, created_at,
// updated_at).
package record
