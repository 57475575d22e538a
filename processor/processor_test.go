package processor

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariata-os/ariata/dedup"
	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/metric"
	"github.com/ariata-os/ariata/pkg/retry"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
	"github.com/ariata-os/ariata/router"
	"github.com/ariata-os/ariata/testutil"
)

type pipeline struct {
	proc       *Processor
	relational *testutil.FakeRelational
	blobs      *testutil.FakeBlob
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	reg, err := registry.Default()
	require.NoError(t, err)

	relational := &testutil.FakeRelational{}
	blobs := &testutil.FakeBlob{}

	cfg := DefaultConfig()
	cfg.Retry = retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	proc := New(
		reg,
		dedup.New(dedup.NewMemoryIndex()),
		router.New(),
		relational,
		blobs,
		metric.NewRegistry().Metrics,
		nil,
		cfg,
	)
	return &pipeline{proc: proc, relational: relational, blobs: blobs}
}

func (p *pipeline) schema(t *testing.T, source, stream string) *registry.StreamSchema {
	t.Helper()
	schema, err := p.proc.registry.Lookup(source, stream)
	require.NoError(t, err)
	return schema
}

func heartRateRaw(ts string) record.Raw {
	return record.Raw{
		"timestamp":   ts,
		"sample_type": "HKQuantityTypeIdentifierHeartRate",
		"heart_rate":  72.0,
		"unit":        "count/min",
	}
}

func TestProcessRecord_HeartRateSample(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "ios", "healthkit")

	persisted, err := p.proc.ProcessRecord(context.Background(), schema, "device-1", heartRateRaw("2025-01-01T12:00:00Z"))
	require.NoError(t, err)
	require.NotNil(t, persisted)

	assert.Equal(t, "stream_ios_healthkit", persisted.Table)
	assert.NotEmpty(t, persisted.ID)
	assert.Empty(t, persisted.BlobPaths)

	rows := p.relational.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 72.0, rows[0].Columns["heart_rate"])
	assert.Equal(t, "device-1", rows[0].Columns["source_id"])
	assert.Equal(t, persisted.ID, rows[0].Columns["id"])
	assert.Empty(t, p.blobs.Paths())
}

func TestProcessRecord_DuplicateIsIdempotentSkip(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "mac", "messages")
	raw := record.Raw{
		"timestamp":  "2025-01-01T12:00:00Z",
		"message_id": "msg-1",
		"date":       "2025-01-01T12:00:00Z",
		"text":       "hello",
	}

	_, err := p.proc.ProcessRecord(context.Background(), schema, "mac-1", raw)
	require.NoError(t, err)

	_, err = p.proc.ProcessRecord(context.Background(), schema, "mac-1", raw)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicate(err))

	assert.Len(t, p.relational.Rows(), 1, "duplicate must not write a second row")
}

func TestProcessRecord_ValidationRejects(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "ios", "healthkit")

	raw := heartRateRaw("2025-01-01T12:00:00Z")
	raw["heart_rate"] = 500.0 // above declared max

	_, err := p.proc.ProcessRecord(context.Background(), schema, "device-1", raw)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.Empty(t, p.relational.Rows())
}

func TestProcessRecord_MissingTimestampRejects(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "ios", "healthkit")

	raw := heartRateRaw("2025-01-01T12:00:00Z")
	delete(raw, "timestamp")

	_, err := p.proc.ProcessRecord(context.Background(), schema, "device-1", raw)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestProcessRecord_HybridWritesBlobBeforeRow(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "ios", "mic")

	audio := []byte("fLaC...audio bytes...")
	raw := record.Raw{
		"timestamp":       "2025-01-01T12:00:00Z",
		"recording_id":    "rec_001",
		"timestamp_start": "2025-01-01T11:59:30Z",
		"duration":        30000,
		"sample_rate":     44100,
		"audio_data":      base64.StdEncoding.EncodeToString(audio),
	}

	persisted, err := p.proc.ProcessRecord(context.Background(), schema, "iphone-1", raw)
	require.NoError(t, err)

	path, ok := persisted.BlobPaths["audio_data"]
	require.True(t, ok)
	assert.Contains(t, path, "assets/ios_mic/2025/01/01/audio_data_")
	assert.Contains(t, path, ".flac")

	obj, ok := p.blobs.Object(path)
	require.True(t, ok)
	assert.Equal(t, "audio/flac", obj.ContentType)

	rows := p.relational.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, path, rows[0].Columns["audio_data_path"])
	_, hasInline := rows[0].Columns["audio_data"]
	assert.False(t, hasInline, "audio bytes must never reach the relational row")
}

func TestProcessRecord_StorageFailureReleasesClaim(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "mac", "messages")
	raw := record.Raw{
		"timestamp":  "2025-01-01T12:00:00Z",
		"message_id": "msg-retry",
		"date":       "2025-01-01T12:00:00Z",
	}

	// Exhaust both retry attempts.
	p.relational.FailNext = 2
	_, err := p.proc.ProcessRecord(context.Background(), schema, "mac-1", raw)
	require.Error(t, err)
	assert.False(t, errors.IsDuplicate(err))

	// The resend is processed fresh, not mistaken for a duplicate.
	persisted, err := p.proc.ProcessRecord(context.Background(), schema, "mac-1", raw)
	require.NoError(t, err)
	require.NotNil(t, persisted)
}

func TestProcessRecord_TransientFailureRetriesWrite(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "ios", "healthkit")

	// First attempt fails, second succeeds inside one ProcessRecord call.
	p.relational.FailNext = 1
	_, err := p.proc.ProcessRecord(context.Background(), schema, "device-1", heartRateRaw("2025-01-01T12:00:00Z"))
	require.NoError(t, err)
	assert.Len(t, p.relational.Rows(), 1)
}

func TestProcessRecord_DefaultsApplied(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "mac", "messages")
	raw := record.Raw{
		"timestamp":  "2025-01-01T12:00:00Z",
		"message_id": "msg-2",
		"date":       "2025-01-01T12:00:00Z",
	}

	_, err := p.proc.ProcessRecord(context.Background(), schema, "mac-1", raw)
	require.NoError(t, err)

	rows := p.relational.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "iMessage", rows[0].Columns["service"])
}

func TestProcessRecord_UnmappedFieldsLandInRawData(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "ios", "healthkit")

	raw := heartRateRaw("2025-01-01T12:00:00Z")
	raw["motionContext"] = "active"

	_, err := p.proc.ProcessRecord(context.Background(), schema, "device-1", raw)
	require.NoError(t, err)

	rows := p.relational.Rows()
	require.Len(t, rows, 1)
	rawData, ok := rows[0].Columns["raw_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "active", rawData["motionContext"])
}

func TestProcessBatch_MixedOutcomes(t *testing.T) {
	p := newPipeline(t)

	raws := []record.Raw{
		heartRateRaw("2025-01-01T12:00:00Z"),
		heartRateRaw("2025-01-01T12:00:00Z"), // exact repeat, single-strategy duplicate
		heartRateRaw("2025-01-01T12:00:05Z"),
		{"timestamp": "2025-01-01T12:00:10Z", "sample_type": "HeartRate", "heart_rate": 1000.0},
	}

	summary, err := p.proc.ProcessBatch(context.Background(), "ios", "healthkit", "device-1", raws)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Accepted)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 0, summary.Failed)
}

func TestProcessBatch_UnknownStreamAbortsBatch(t *testing.T) {
	p := newPipeline(t)

	_, err := p.proc.ProcessBatch(context.Background(), "ios", "nonexistent", "device-1", []record.Raw{{}})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.Empty(t, p.relational.Rows())
}

func TestRegisterNormalizer_OverridesGeneric(t *testing.T) {
	p := newPipeline(t)
	schema := p.schema(t, "ios", "healthkit")

	p.proc.RegisterNormalizer("ios/healthkit", NormalizerFunc(
		func(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
			rec := record.NewNormalized(schema)
			rec.Timestamp = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			rec.Set("sample_type", "Custom")
			return rec, nil
		}))

	_, err := p.proc.ProcessRecord(context.Background(), schema, "device-1", record.Raw{"ignored": true})
	require.NoError(t, err)

	rows := p.relational.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Custom", rows[0].Columns["sample_type"])
}
