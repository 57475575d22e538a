package router

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// RelationalPayload is the row written to the stream's table.
type RelationalPayload struct {
	Table   string
	Columns map[string]any
}

// BlobPayload is one object written to the blob store.
type BlobPayload struct {
	Field       string
	Path        string
	Content     []byte
	ContentType string
}

// Router computes the storage split. The id generator is injectable for
// deterministic tests; the default is uuid.NewString, which guarantees
// practical uniqueness across the process lifetime and across concurrent
// writers.
type Router struct {
	newID func() string
}

// Option configures a Router.
type Option func(*Router)

// WithIDGenerator overrides blob id generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Router) { r.newID = fn }
}

// New returns a Router with default id generation.
func New(opts ...Option) *Router {
	r := &Router{newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route splits rec per the schema's storage policy. The relational
// payload always carries the envelope (id, source_id, created_at,
// updated_at), the primary timestamp, and the raw_data catch-all when
// present.
func (r *Router) Route(schema *registry.StreamSchema, rec *record.Normalized) (RelationalPayload, []BlobPayload, error) {
	row := RelationalPayload{
		Table:   schema.Table,
		Columns: make(map[string]any, len(rec.Fields)+6),
	}

	row.Columns["id"] = rec.ID
	row.Columns["source_id"] = rec.SourceID
	row.Columns["timestamp"] = rec.Timestamp
	row.Columns["created_at"] = rec.CreatedAt
	row.Columns["updated_at"] = rec.UpdatedAt
	if len(rec.RawData) > 0 {
		row.Columns["raw_data"] = rec.RawData
	}

	var blobs []BlobPayload
	stream := schema.Source + "_" + schema.Name

	for name, value := range rec.Fields {
		if !schema.IsBlobField(name) {
			row.Columns[name] = value
			continue
		}

		col := schema.Column(name)
		content, err := serializeBlob(value)
		if err != nil {
			return RelationalPayload{}, nil, errors.WrapInvalid(err, "StorageRouter", "Route", "blob serialization")
		}
		path := ComputePath(schema.PathTemplate(), stream, rec.Timestamp, name, r.newID(), extensionFor(col))

		blobs = append(blobs, BlobPayload{
			Field:       name,
			Path:        path,
			Content:     content,
			ContentType: contentTypeFor(col),
		})
		row.Columns[schema.ReferenceColumn(name)] = path
	}

	return row, blobs, nil
}

// serializeBlob renders a blob field value for object storage: binary
// content as-is, everything else as JSON.
func serializeBlob(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}
