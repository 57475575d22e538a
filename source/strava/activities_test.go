package strava

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

func activitiesSchema(t *testing.T) *registry.StreamSchema {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	schema, err := reg.Lookup("strava", "activities")
	require.NoError(t, err)
	return schema
}

func TestNormalizeActivities(t *testing.T) {
	raw := record.Raw{
		"id":                   123456789.0,
		"name":                 "Morning Run",
		"type":                 "Run",
		"sport_type":           "Run",
		"distance":             5000.0,
		"moving_time":          1800.0,
		"elapsed_time":         1900.0,
		"total_elevation_gain": 50.0,
		"start_date":           "2025-01-01T06:00:00Z",
		"start_date_local":     "2025-01-01T08:00:00",
		"kudos_count":          10.0,
		"trainer":              false,
		"average_heartrate":    145.2,
		"calories":             450.0,
		"map":                  map[string]any{"id": "a123", "summary_polyline": "abc"},
	}

	rec, err := normalizeActivities(activitiesSchema(t), raw)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, int64(123456789), rec.Fields["activity_id"])
	assert.Equal(t, "Morning Run", rec.Fields["name"])
	assert.Equal(t, 5000.0, rec.Fields["distance"])
	assert.Equal(t, int64(1800), rec.Fields["moving_time"])
	assert.Equal(t, false, rec.Fields["trainer"])
	assert.Equal(t, 145.2, rec.Fields["average_heartrate"])
	assert.NotNil(t, rec.Fields["map"])
}

func TestNormalizeActivities_ExtrasCaptured(t *testing.T) {
	raw := record.Raw{
		"id":             1.0,
		"start_date":     "2025-01-01T06:00:00Z",
		"splits_metric":  []any{map[string]any{"distance": 1000.0}},
		"segment_efforts": []any{},
	}

	rec, err := normalizeActivities(activitiesSchema(t), raw)
	require.NoError(t, err)

	assert.Contains(t, rec.RawData, "splits_metric")
	assert.Contains(t, rec.RawData, "segment_efforts")
}
