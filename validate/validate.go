// Package validate checks normalized records against their stream schema.
//
// Checks run in a fixed order: required fields, numeric ranges, string
// lengths, then enumerations. A validation failure rejects the single
// record and never the batch; callers log the rejection and move on.
package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// Record validates rec against schema. The first failed check wins; the
// returned error is always invalid-class.
func Record(schema *registry.StreamSchema, rec *record.Normalized) error {
	// The implicit primary timestamp is required on every stream.
	if rec.Timestamp.IsZero() {
		return &errors.MissingFieldError{Field: "timestamp"}
	}

	for _, col := range schema.Columns {
		if !col.Required {
			continue
		}
		if _, ok := rec.Field(col.Name); !ok {
			return &errors.MissingFieldError{Field: col.Name}
		}
	}

	for _, col := range schema.Columns {
		if col.Min == nil && col.Max == nil {
			continue
		}
		v, ok := rec.Field(col.Name)
		if !ok {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return errors.WrapInvalid(
				fmt.Errorf("field %q: expected numeric value, got %T", col.Name, v),
				"Validator", "Record", "range check")
		}
		min, max := rangeBounds(col)
		if f < min || f > max {
			return &errors.OutOfRangeError{Field: col.Name, Value: f, Min: min, Max: max}
		}
	}

	for _, col := range schema.Columns {
		if col.MaxLength <= 0 {
			continue
		}
		v, ok := rec.Field(col.Name)
		if !ok {
			continue
		}
		// Non-string values under a length bound pass through; the type
		// mismatch surfaces at insert time if the column is textual.
		s, ok := v.(string)
		if !ok {
			continue
		}
		if len(s) > col.MaxLength {
			return &errors.TooLongError{Field: col.Name, Length: len(s), MaxLength: col.MaxLength}
		}
	}

	for _, col := range schema.Columns {
		if len(col.Enum) == 0 {
			continue
		}
		v, ok := rec.Field(col.Name)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return &errors.InvalidEnumError{Field: col.Name, Value: fmt.Sprint(v)}
		}
		if !contains(col.Enum, s) {
			return &errors.InvalidEnumError{Field: col.Name, Value: s}
		}
	}

	return nil
}

// rangeBounds returns the inclusive bounds, substituting infinities for
// half-open declarations.
func rangeBounds(col registry.Column) (float64, float64) {
	min, max := math.Inf(-1), math.Inf(1)
	if col.Min != nil {
		min = *col.Min
	}
	if col.Max != nil {
		max = *col.Max
	}
	return min, max
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case time.Duration:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(set []string, s string) bool {
	for _, member := range set {
		if member == s {
			return true
		}
	}
	return false
}
