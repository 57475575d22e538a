package ios

import (
	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// normalizeLocation maps one location fix onto the location stream.
// Field names already match the schema; the work here is numeric
// coercion and keeping reverse-geocode extras optional.
func normalizeLocation(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)
	rec.Timestamp = timestamp.Parse(raw["timestamp"])

	handled := map[string]bool{"timestamp": true}
	for _, key := range []string{
		"latitude", "longitude", "altitude", "horizontal_accuracy",
		"vertical_accuracy", "speed", "course",
	} {
		if v, ok := raw.Float(key); ok {
			rec.Set(key, v)
		}
		handled[key] = true
	}

	if v, ok := raw.Int("floor"); ok {
		rec.Set("floor", v)
	}
	handled["floor"] = true

	for _, key := range []string{"activity_type", "address", "place_name"} {
		if s := raw.String(key); s != "" {
			rec.Set(key, s)
		}
		handled[key] = true
	}

	rec.CaptureExtras(raw, handled)
	return rec, nil
}
