package ios

import (
	"strings"

	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// healthkitEnvelope lists the sample keys every variant shares. Keys
// outside this set and the variant-specific ones land in raw_data.
var healthkitEnvelope = map[string]bool{
	"type": true, "value": true, "unit": true, "timestamp": true,
	"startDate": true, "endDate": true, "sourceName": true,
	"sourceVersion": true, "device": true, "metadata": true,
}

// normalizeHealthKit maps one HealthKit sample onto the healthkit
// stream. The sample's type identifier selects which column receives
// the reading; unrecognized types fall back to the generic value
// column so nothing is dropped.
func normalizeHealthKit(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)

	rec.Timestamp = timestamp.Parse(raw["timestamp"])
	if rec.Timestamp.IsZero() {
		rec.Timestamp = timestamp.Parse(raw["startDate"])
	}

	sampleType := raw.String("type")
	rec.Set("sample_type", sampleType)
	setTime(rec, "start_date", raw["startDate"])
	setTime(rec, "end_date", raw["endDate"])
	if s := raw.String("sourceName"); s != "" {
		rec.Set("source_name", s)
	}
	if s := raw.String("sourceVersion"); s != "" {
		rec.Set("source_version", s)
	}

	handled := copyKeys(healthkitEnvelope)
	value, hasValue := raw.Float("value")

	switch {
	case strings.Contains(sampleType, "HeartRateVariability"):
		// Checked before HeartRate since the identifier contains both.
		if hasValue {
			rec.Set("hrv", value)
		}
		rec.Set("unit", unitOr(raw, "ms"))

	case strings.Contains(sampleType, "HeartRate"):
		if hasValue {
			rec.Set("heart_rate", value)
		}
		rec.Set("unit", unitOr(raw, "count/min"))

	case strings.Contains(sampleType, "StepCount"):
		if hasValue {
			rec.Set("steps", int64(value))
		}
		rec.Set("unit", unitOr(raw, "count"))

	case strings.Contains(sampleType, "ActiveEnergyBurned"):
		if hasValue {
			rec.Set("active_energy", value)
		}
		rec.Set("unit", unitOr(raw, "kcal"))

	case strings.Contains(sampleType, "DistanceWalkingRunning"):
		if hasValue {
			rec.Set("distance", value)
		}
		rec.Set("unit", unitOr(raw, "m"))

	case strings.Contains(sampleType, "AppleExerciseTime"):
		if hasValue {
			rec.Set("exercise_time", value)
		}
		rec.Set("unit", unitOr(raw, "min"))

	case strings.Contains(sampleType, "SleepAnalysis"):
		// 0=InBed, 1=Asleep, 2=Awake
		if hasValue {
			rec.Set("sleep_state", int64(value))
		}
		if s := raw.String("sourceName"); s != "" {
			rec.Set("sleep_source", s)
		}

	case strings.Contains(sampleType, "RespiratoryRate"):
		if hasValue {
			rec.Set("respiratory_rate", value)
		}
		rec.Set("unit", unitOr(raw, "count/min"))

	case strings.Contains(sampleType, "OxygenSaturation"):
		if hasValue {
			rec.Set("oxygen_saturation", value)
		}
		rec.Set("unit", unitOr(raw, "%"))

	case strings.Contains(sampleType, "BodyTemperature"):
		if hasValue {
			rec.Set("body_temperature", value)
		}
		rec.Set("unit", unitOr(raw, "degC"))

	case strings.Contains(sampleType, "BloodPressure"):
		if v, ok := raw.Float("systolic"); ok {
			rec.Set("systolic_pressure", v)
		}
		if v, ok := raw.Float("diastolic"); ok {
			rec.Set("diastolic_pressure", v)
		}
		rec.Set("unit", unitOr(raw, "mmHg"))
		handled["systolic"] = true
		handled["diastolic"] = true

	case strings.Contains(sampleType, "Workout"):
		rec.Set("workout_type", sampleType)
		setFloat(rec, "duration", raw, "duration")
		setFloat(rec, "total_distance", raw, "totalDistance")
		setFloat(rec, "total_energy_burned", raw, "totalEnergyBurned")
		setFloat(rec, "average_heart_rate", raw, "averageHeartRate")
		setFloat(rec, "max_heart_rate", raw, "maxHeartRate")
		setFloat(rec, "elevation_ascended", raw, "elevationAscended")
		setFloat(rec, "elevation_descended", raw, "elevationDescended")
		rec.Set("indoor_workout", raw.Bool("indoorWorkout"))
		if v, ok := raw["workoutEvents"]; ok {
			rec.Set("workout_events", v)
		}
		if v, ok := raw["workoutRoute"]; ok {
			rec.Set("workout_route", v)
		}
		for _, k := range []string{
			"duration", "totalDistance", "totalEnergyBurned",
			"averageHeartRate", "maxHeartRate", "elevationAscended",
			"elevationDescended", "indoorWorkout", "workoutEvents",
			"workoutRoute",
		} {
			handled[k] = true
		}

	default:
		if hasValue {
			rec.Set("value", value)
		}
		if u := raw.String("unit"); u != "" {
			rec.Set("unit", u)
		}
	}

	if v := raw.Map("device"); v != nil {
		rec.Set("device", v)
	}
	if v := raw.Map("metadata"); v != nil {
		rec.Set("metadata", v)
	}

	rec.CaptureExtras(raw, handled)
	return rec, nil
}

func unitOr(raw record.Raw, fallback string) string {
	if u := raw.String("unit"); u != "" {
		return u
	}
	return fallback
}

func setFloat(rec *record.Normalized, col string, raw record.Raw, key string) {
	if v, ok := raw.Float(key); ok {
		rec.Set(col, v)
	}
}

func setTime(rec *record.Normalized, col string, v any) {
	if ts := timestamp.Parse(v); !ts.IsZero() {
		rec.Set(col, ts)
	}
}

func copyKeys(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src)+8)
	for k := range src {
		dst[k] = true
	}
	return dst
}
