package record

import (
	"time"

	"github.com/ariata-os/ariata/registry"
)

// Raw is an untyped, source-native payload. It is owned by the call that
// produced it and discarded after normalization.
type Raw map[string]any

// Has reports whether the key is present (even if null).
func (r Raw) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the value as a string, or "" when absent or not a string.
func (r Raw) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float returns the value as a float64, converting integer JSON numbers.
func (r Raw) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Int returns the value as an int64, truncating float JSON numbers.
func (r Raw) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool returns the value as a bool, defaulting to false.
func (r Raw) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Map returns the value as a nested object, or nil.
func (r Raw) Map(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

// Normalized is a Raw record mapped onto a stream schema's columns. It is
// created by exactly one normalizer call, immutable once validated, and
// consumed by the deduplicator and the storage router.
type Normalized struct {
	Schema *registry.StreamSchema

	// Timestamp is the record's implicit primary timestamp, used for
	// blob path bucketing and time-series ordering.
	Timestamp time.Time

	// Fields holds the schema-declared columns.
	Fields map[string]any

	// RawData is the catch-all for source fields no column claimed.
	RawData map[string]any

	// Envelope, stamped by the stream processor before routing.
	ID        string
	SourceID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNormalized returns an empty normalized record for the schema.
func NewNormalized(schema *registry.StreamSchema) *Normalized {
	return &Normalized{
		Schema: schema,
		Fields: make(map[string]any),
	}
}

// Set stores a column value, dropping nils so presence checks stay simple.
func (n *Normalized) Set(name string, value any) {
	if value == nil {
		return
	}
	n.Fields[name] = value
}

// Field returns a column value and whether it is present and non-nil.
func (n *Normalized) Field(name string) (any, bool) {
	v, ok := n.Fields[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// PutExtra records an unmapped source field in the raw_data catch-all.
func (n *Normalized) PutExtra(key string, value any) {
	if n.RawData == nil {
		n.RawData = make(map[string]any)
	}
	n.RawData[key] = value
}

// CaptureExtras copies every raw key not in handled into raw_data.
func (n *Normalized) CaptureExtras(raw Raw, handled map[string]bool) {
	for k, v := range raw {
		if !handled[k] {
			n.PutExtra(k, v)
		}
	}
}

// ApplyDefaults fills absent columns that declare a default value.
func (n *Normalized) ApplyDefaults() {
	for _, c := range n.Schema.Columns {
		if c.Default == nil {
			continue
		}
		if _, ok := n.Field(c.Name); !ok {
			n.Fields[c.Name] = c.Default
		}
	}
}
