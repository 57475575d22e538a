package strava

import (
	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/processor"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// Register installs the Strava stream normalizers.
func Register(p *processor.Processor) {
	p.RegisterNormalizer("strava/activities", processor.NormalizerFunc(normalizeActivities))
}

var activityStrings = []string{"name", "type", "sport_type", "timezone", "gear_id"}

var activityFloats = []string{
	"distance", "total_elevation_gain", "average_speed", "max_speed",
	"average_cadence", "average_watts", "max_watts", "weighted_average_watts",
	"kilojoules", "average_heartrate", "max_heartrate", "calories",
	"suffer_score", "elev_high", "elev_low",
}

var activityInts = []string{
	"moving_time", "elapsed_time", "achievement_count", "kudos_count",
	"comment_count", "athlete_count", "workout_type",
}

var activityBools = []string{
	"trainer", "commute", "manual", "private", "flagged", "device_watts",
}

// normalizeActivities maps one activity summary onto the activities
// stream. The activity's start date is the primary timestamp; the API's
// numeric id becomes the activity_id identity column.
func normalizeActivities(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)

	start := timestamp.Parse(raw["start_date"])
	rec.Timestamp = start
	if !start.IsZero() {
		rec.Set("start_date", start)
	}
	if ts := timestamp.Parse(raw["start_date_local"]); !ts.IsZero() {
		rec.Set("start_date_local", ts)
	}

	handled := map[string]bool{
		"id": true, "start_date": true, "start_date_local": true, "map": true,
	}

	if id, ok := raw.Int("id"); ok {
		rec.Set("activity_id", id)
	}

	for _, key := range activityStrings {
		if s := raw.String(key); s != "" {
			rec.Set(key, s)
		}
		handled[key] = true
	}
	for _, key := range activityFloats {
		if v, ok := raw.Float(key); ok {
			rec.Set(key, v)
		}
		handled[key] = true
	}
	for _, key := range activityInts {
		if v, ok := raw.Int(key); ok {
			rec.Set(key, v)
		}
		handled[key] = true
	}
	for _, key := range activityBools {
		if _, ok := raw[key]; ok {
			rec.Set(key, raw.Bool(key))
		}
		handled[key] = true
	}

	if v := raw.Map("map"); v != nil {
		rec.Set("map", v)
	}

	rec.CaptureExtras(raw, handled)
	return rec, nil
}
