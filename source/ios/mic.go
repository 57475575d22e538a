package ios

import (
	"encoding/base64"
	"fmt"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// normalizeMic maps one microphone recording onto the mic stream. The
// agent sends audio content base64-encoded inside the JSON payload;
// decoding happens here so the storage router routes raw bytes to the
// blob store. The recording's own start time is the primary timestamp.
func normalizeMic(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)

	start := timestamp.Parse(raw["timestamp_start"])
	rec.Timestamp = start
	if !start.IsZero() {
		rec.Set("timestamp_start", start)
	}
	setTime(rec, "timestamp_end", raw["timestamp_end"])

	if id := raw.String("id"); id != "" {
		rec.Set("recording_id", id)
	}

	handled := map[string]bool{
		"id": true, "timestamp_start": true, "timestamp_end": true,
		"duration": true, "overlap_duration": true, "audio_format": true,
		"sample_rate": true, "audio_level": true, "peak_level": true,
		"transcription": true, "audio_data": true,
	}

	for _, key := range []string{"duration", "overlap_duration", "sample_rate"} {
		if v, ok := raw.Int(key); ok {
			rec.Set(key, v)
		}
	}
	for _, key := range []string{"audio_level", "peak_level"} {
		if v, ok := raw.Float(key); ok {
			rec.Set(key, v)
		}
	}
	if s := raw.String("audio_format"); s != "" {
		rec.Set("audio_format", s)
	}

	if tr := raw.Map("transcription"); tr != nil {
		t := record.Raw(tr)
		if text := t.String("text"); text != "" {
			rec.Set("transcription_text", text)
		}
		if conf, ok := t.Float("confidence"); ok {
			rec.Set("transcription_confidence", conf)
		}
		if lang := t.String("language"); lang != "" {
			rec.Set("language", lang)
		}
	}

	if encoded := raw.String("audio_data"); encoded != "" {
		audio, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("recording %q: %w", raw.String("id"), err),
				"IOSMic", "Normalize", "audio_data base64 decode")
		}
		rec.Set("audio_data", audio)
	}

	rec.CaptureExtras(raw, handled)
	return rec, nil
}
