// Package timestamp provides tolerant timestamp parsing for source-native
// payloads.
//
// Every source encodes time differently: cloud APIs send RFC3339 strings
// (with or without fractional seconds), device agents send Unix epochs in
// seconds or milliseconds, and macOS Messages sends Core Data timestamps
// (seconds since 2001-01-01). Normalizers funnel all of them through Parse
// and work with UTC time.Time values from there on.
//
// Zero Value Semantics:
//   - A zero time.Time means "not set" or "unknown"
//   - Parse returns the zero time for nil, empty, and unparseable input
package timestamp

import (
	"strconv"
	"strings"
	"time"
)

// appleEpoch is the Core Data reference date used by macOS Messages:
// 2001-01-01T00:00:00Z.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// layouts tried in order for string input. RFC3339 variants first since
// they dominate the cloud sources.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse converts a source-native timestamp value to a UTC time.Time.
// Supports:
//   - string: RFC3339 (with or without fractional seconds or zone),
//     "YYYY-MM-DD HH:MM:SS", bare dates (midnight UTC), and numeric
//     epoch strings
//   - int/int64: Unix epoch, milliseconds if > 1e12, otherwise seconds
//   - float64: same epoch heuristic, preserving fractional seconds
//   - time.Time and *time.Time: passed through, converted to UTC
//
// Returns the zero time for nil, empty, and unparseable input.
func Parse(input any) time.Time {
	switch v := input.(type) {
	case nil:
		return time.Time{}

	case time.Time:
		if v.IsZero() {
			return time.Time{}
		}
		return v.UTC()

	case *time.Time:
		if v == nil {
			return time.Time{}
		}
		return Parse(*v)

	case int64:
		return fromEpoch(float64(v))

	case int:
		return fromEpoch(float64(v))

	case int32:
		return fromEpoch(float64(v))

	case float64:
		return fromEpoch(v)

	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(n)
		}
		return time.Time{}

	default:
		return time.Time{}
	}
}

// fromEpoch interprets a numeric value as a Unix epoch. Values above 1e12
// are milliseconds (1e12 seconds is the year 33658); everything else is
// seconds.
func fromEpoch(v float64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	if v > 1e12 {
		return time.UnixMilli(int64(v)).UTC()
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// ParseAppleEpoch converts a macOS Core Data timestamp (seconds, or
// nanoseconds on newer releases, since 2001-01-01 UTC) to a time.Time.
// String RFC3339 input is accepted too since some agent versions
// pre-convert.
func ParseAppleEpoch(input any) time.Time {
	switch v := input.(type) {
	case nil:
		return time.Time{}
	case string:
		return Parse(v)
	case int64:
		return appleOffset(float64(v))
	case int:
		return appleOffset(float64(v))
	case float64:
		return appleOffset(v)
	default:
		return time.Time{}
	}
}

// appleOffset adds a Core Data offset to the Apple epoch. Offsets above
// 1e11 are nanoseconds (macOS 10.13+ message databases).
func appleOffset(v float64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	if v > 1e11 {
		return appleEpoch.Add(time.Duration(int64(v))).UTC()
	}
	return appleEpoch.Add(time.Duration(v * float64(time.Second))).UTC()
}

// Format renders a timestamp as RFC3339 UTC for logs and blob paths.
// Returns the empty string for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// DateParts decomposes a timestamp into zero-padded year, month, and day
// strings for blob path construction.
func DateParts(t time.Time) (year, month, day string) {
	t = t.UTC()
	return t.Format("2006"), t.Format("01"), t.Format("02")
}
