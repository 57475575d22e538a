package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariata-os/ariata/errors"
)

func TestInsertRow_EmptyColumnsRejected(t *testing.T) {
	// The guard runs before the pool is touched.
	s := &Store{}
	err := s.InsertRow(context.Background(), "stream_ios_healthkit", nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestInsertSQL_ColumnsSortedAndParameterized(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := insertSQL("stream_ios_healthkit", map[string]any{
		"timestamp":   ts,
		"id":          "rec-1",
		"heart_rate":  72.0,
		"sample_type": "HeartRate",
	})
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "stream_ios_healthkit" ("heart_rate", "id", "sample_type", "timestamp") VALUES ($1, $2, $3, $4)`,
		sql)
	assert.Equal(t, []any{72.0, "rec-1", "HeartRate", ts}, args)
}

func TestInsertSQL_StableAcrossMapIterationOrder(t *testing.T) {
	cols := map[string]any{"b": 2, "a": 1, "c": 3}
	first, _, err := insertSQL("t", cols)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		next, _, err := insertSQL("t", cols)
		require.NoError(t, err)
		require.Equal(t, first, next)
	}
}

func TestInsertSQL_QuotesIdentifiers(t *testing.T) {
	sql, _, err := insertSQL("stream", map[string]any{"user": "x"})
	require.NoError(t, err)
	assert.Contains(t, sql, `"stream"`)
	assert.Contains(t, sql, `"user"`)
}

func TestEncodeValue_StructuredBecomesJSON(t *testing.T) {
	got, err := encodeValue(map[string]any{"motion": "active"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"motion":"active"}`, got.(string))

	got, err = encodeValue([]any{1, 2, 3})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, got.(string))
}

func TestEncodeValue_ScalarsPassThrough(t *testing.T) {
	for _, v := range []any{nil, "s", true, 1, int64(2), 3.5, []byte{0x1}} {
		got, err := encodeValue(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
