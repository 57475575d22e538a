package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

func calendarSchema(t *testing.T) *registry.StreamSchema {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	schema, err := reg.Lookup("google", "calendar")
	require.NoError(t, err)
	return schema
}

func TestNormalizeCalendar_TimedEvent(t *testing.T) {
	raw := record.Raw{
		"event": map[string]any{
			"id":          "event_123",
			"summary":     "Team sync",
			"description": "Weekly planning",
			"location":    "Conference Room A",
			"start":       map[string]any{"dateTime": "2025-01-01T10:00:00Z"},
			"end":         map[string]any{"dateTime": "2025-01-01T11:00:00Z"},
			"status":      "confirmed",
			"htmlLink":    "https://calendar.google.com/event?id=123",
			"attendees":   []any{map[string]any{"email": "a@example.com"}},
		},
		"calendar": map[string]any{
			"id":       "primary",
			"timeZone": "America/Chicago",
		},
	}

	rec, err := normalizeCalendar(calendarSchema(t), raw)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, "event_123", rec.Fields["event_id"])
	assert.Equal(t, "primary", rec.Fields["calendar_id"])
	assert.Equal(t, "Team sync", rec.Fields["summary"])
	assert.Equal(t, "America/Chicago", rec.Fields["timezone"])
	assert.Equal(t, false, rec.Fields["all_day"])
	assert.Equal(t, time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC), rec.Fields["end_time"])
	assert.NotNil(t, rec.Fields["attendees"])
	assert.NotNil(t, rec.Fields["full_event"])
}

func TestNormalizeCalendar_AllDayEvent(t *testing.T) {
	raw := record.Raw{
		"event": map[string]any{
			"id":    "event_456",
			"start": map[string]any{"date": "2025-03-07"},
			"end":   map[string]any{"date": "2025-03-08"},
		},
	}

	rec, err := normalizeCalendar(calendarSchema(t), raw)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, true, rec.Fields["all_day"])
}

func TestNormalizeCalendar_MissingEventProducesEmptyRecord(t *testing.T) {
	rec, err := normalizeCalendar(calendarSchema(t), record.Raw{})
	require.NoError(t, err)

	// Validation downstream rejects it: no event_id, no start_time.
	_, ok := rec.Field("event_id")
	assert.False(t, ok)
	assert.True(t, rec.Timestamp.IsZero())
}
