// Package registry holds the declarative catalog of sources and streams:
// for every stream, a StreamSchema describing its columns, validation
// rules, deduplication strategy, and the split between relational and blob
// storage.
//
// The catalog is loaded exactly once at process start (from the embedded
// default or a YAML file) and is immutable afterwards, so lookups from
// concurrent stream processors need no locking. Schema changes ship as a
// new process generation, never as a live reload.
package registry
