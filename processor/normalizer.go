package processor

import (
	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// Normalizer maps a source-native raw payload onto a stream schema.
// Implementations live in the source packages; streams without a
// registered normalizer fall back to the generic field-name mapping.
type Normalizer interface {
	Normalize(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error)
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error)

// Normalize implements Normalizer.
func (f NormalizerFunc) Normalize(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	return f(schema, raw)
}

// GenericNormalizer maps raw keys to columns of the same name, coercing
// values to the column's declared type. Keys no column claims land in
// raw_data. Suitable for sources whose payloads already use schema
// column names.
func GenericNormalizer() Normalizer {
	return NormalizerFunc(func(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
		rec := record.NewNormalized(schema)
		handled := map[string]bool{"timestamp": true}

		if v, ok := raw["timestamp"]; ok {
			rec.Timestamp = timestamp.Parse(v)
		}

		for _, col := range schema.Columns {
			v, ok := raw[col.Name]
			if !ok || v == nil {
				continue
			}
			if coerced, ok := CoerceValue(col.Type, v); ok {
				rec.Set(col.Name, coerced)
				handled[col.Name] = true
			}
		}

		rec.CaptureExtras(raw, handled)
		return rec, nil
	})
}

// CoerceValue converts a raw JSON-decoded value to the Go type a
// semantic column type expects. Returns false when the value cannot
// represent the type; the caller leaves the column absent and the raw
// value flows to raw_data.
func CoerceValue(t registry.SemanticType, v any) (any, bool) {
	switch t {
	case registry.TypeString, registry.TypeText:
		s, ok := v.(string)
		return s, ok
	case registry.TypeInteger, registry.TypeBigint:
		switch n := v.(type) {
		case int:
			return int64(n), true
		case int64:
			return n, true
		case float64:
			return int64(n), true
		}
		return nil, false
	case registry.TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
		return nil, false
	case registry.TypeBoolean:
		b, ok := v.(bool)
		return b, ok
	case registry.TypeTimestamp:
		ts := timestamp.Parse(v)
		if ts.IsZero() {
			return nil, false
		}
		return ts, true
	case registry.TypeJSON:
		return v, true
	default:
		return nil, false
	}
}
