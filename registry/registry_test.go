package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariata-os/ariata/errors"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"google", "ios", "mac", "notion", "strava"}, reg.Sources())

	schema, err := reg.Lookup("ios", "healthkit")
	require.NoError(t, err)
	assert.Equal(t, "stream_ios_healthkit", schema.Table)
	assert.Equal(t, DedupSingle, schema.Dedup.Strategy)
	assert.Equal(t, StorageRelational, schema.Storage.Strategy)

	mic, err := reg.Lookup("ios", "mic")
	require.NoError(t, err)
	assert.Equal(t, DedupUniqueKey, mic.Dedup.Strategy)
	assert.Equal(t, []string{"recording_id"}, mic.Dedup.Fields)
	assert.Equal(t, StorageHybrid, mic.Storage.Strategy)
	assert.True(t, mic.IsBlobField("audio_data"))
	assert.Equal(t, "audio/flac", mic.Column("audio_data").ContentType)

	pages, err := reg.Lookup("notion", "pages")
	require.NoError(t, err)
	assert.Equal(t, DedupContentHash, pages.Dedup.Strategy)
	assert.ElementsMatch(t, []string{"blocks", "attachments"}, pages.Storage.BlobFields)
}

func TestLookup_UnknownStream(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	_, err = reg.Lookup("ios", "telepathy")
	assert.ErrorIs(t, err, errors.ErrUnknownStream)

	_, err = reg.Lookup("palantir", "visions")
	assert.ErrorIs(t, err, errors.ErrUnknownStream)
}

func TestStreams_SortedAndComplete(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	streams := reg.Streams()
	require.Len(t, streams, 8)
	assert.Equal(t, "google/calendar", streams[0].QualifiedName())
	assert.Equal(t, "strava/activities", streams[len(streams)-1].QualifiedName())

	// Every embedded schema passes its own invariants.
	for _, s := range streams {
		assert.NoError(t, s.Validate(), s.QualifiedName())
	}
}

func TestLoad_RejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		catalog string
	}{
		{"empty", `{}`},
		{"source without streams", `
sources:
  ios:
    platform: device
`},
		{"dedup field not a column", `
sources:
  ios:
    platform: device
    streams:
      mic:
        columns:
          - {name: duration, type: integer}
        dedup: {strategy: unique_key, fields: [recording_id]}
        storage: {strategy: relational_only}
`},
		{"blob field not a column", `
sources:
  ios:
    platform: device
    streams:
      mic:
        columns:
          - {name: recording_id, type: string, required: true}
        dedup: {strategy: none}
        storage: {strategy: hybrid, blob_fields: [audio_data]}
`},
		{"hybrid without blob fields", `
sources:
  ios:
    platform: device
    streams:
      mic:
        columns:
          - {name: recording_id, type: string, required: true}
        dedup: {strategy: none}
        storage: {strategy: hybrid}
`},
		{"unknown column type", `
sources:
  ios:
    platform: device
    streams:
      mic:
        columns:
          - {name: recording_id, type: uuid}
        dedup: {strategy: none}
        storage: {strategy: relational_only}
`},
		{"unknown dedup strategy", `
sources:
  ios:
    platform: device
    streams:
      mic:
        columns:
          - {name: recording_id, type: string}
        dedup: {strategy: bloom_filter}
        storage: {strategy: relational_only}
`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load([]byte(test.catalog))
			require.Error(t, err)
			assert.True(t, errors.IsFatal(err), "catalog errors must be fatal")
		})
	}
}

func TestSchema_IdentityFields(t *testing.T) {
	schema := &StreamSchema{
		Name:   "location",
		Source: "ios",
		Columns: []Column{
			{Name: "latitude", Type: TypeFloat, Required: true},
			{Name: "longitude", Type: TypeFloat, Required: true},
			{Name: "altitude", Type: TypeFloat},
		},
		Dedup:   DedupPolicy{Strategy: DedupSingle},
		Storage: StoragePolicy{Strategy: StorageRelational},
	}

	assert.Equal(t, []string{"latitude", "longitude"}, schema.IdentityFields())
}

func TestSchema_PathTemplateDefault(t *testing.T) {
	schema := &StreamSchema{Storage: StoragePolicy{Strategy: StorageHybrid}}
	assert.Equal(t, DefaultPathTemplate, schema.PathTemplate())

	schema.Storage.PathTemplate = "blobs/{stream}/{id}.{ext}"
	assert.Equal(t, "blobs/{stream}/{id}.{ext}", schema.PathTemplate())
}

func TestSchema_ReferenceColumnCollision(t *testing.T) {
	schema := &StreamSchema{
		Name:   "mic",
		Source: "ios",
		Columns: []Column{
			{Name: "audio_data", Type: TypeText},
			{Name: "audio_data_path", Type: TypeString},
		},
		Dedup: DedupPolicy{Strategy: DedupNone},
		Storage: StoragePolicy{
			Strategy:   StorageHybrid,
			BlobFields: []string{"audio_data"},
		},
	}

	require.Error(t, schema.Validate())
}
