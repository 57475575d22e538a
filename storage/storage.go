package storage

import "context"

// RelationalStore persists one structured row per record into a named
// table. Column values are Go natives; maps and slices are stored as
// JSON documents.
type RelationalStore interface {
	// InsertRow writes a single row. The columns map always carries the
	// record envelope (id, source_id, timestamp, created_at, updated_at)
	// plus the stream's typed columns.
	InsertRow(ctx context.Context, table string, columns map[string]any) error

	// Close releases the underlying connections.
	Close()
}

// BlobStore persists large field content at a hierarchical path. Paths
// are unique per write; Put fails if the path is already occupied by
// different content.
type BlobStore interface {
	Put(ctx context.Context, path string, content []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
}
