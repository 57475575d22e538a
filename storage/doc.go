// Package storage defines the backend interfaces the pipeline persists
// through: a relational store for structured rows and a blob store for
// large binary or document content.
//
// Implementations live in subpackages (postgres, objectstore) and must
// be safe for concurrent use. The pipeline treats both stores as
// at-least-once sinks: a failed write is retried with the same content
// at the same address, so implementations must tolerate replays of an
// identical write without corrupting state.
package storage
