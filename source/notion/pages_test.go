package notion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

func pagesSchema(t *testing.T) *registry.StreamSchema {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	schema, err := reg.Lookup("notion", "pages")
	require.NoError(t, err)
	return schema
}

func pageRaw() record.Raw {
	return record.Raw{
		"id":               "page_123",
		"created_time":     "2025-01-01T12:00:00.000Z",
		"last_edited_time": "2025-01-02T09:30:00.000Z",
		"archived":         false,
		"url":              "https://www.notion.so/page_123",
		"parent":           map[string]any{"type": "workspace", "workspace": true},
		"properties": map[string]any{
			"Name": map[string]any{
				"type": "title",
				"title": []any{
					map[string]any{"plain_text": "Quarterly "},
					map[string]any{"plain_text": "Plan"},
				},
			},
		},
		"blocks": []any{
			map[string]any{"type": "paragraph", "paragraph": map[string]any{"text": "hello"}},
		},
	}
}

func TestNormalizePages(t *testing.T) {
	rec, err := normalizePages(pagesSchema(t), pageRaw())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC), rec.Timestamp,
		"edit time orders page versions")
	assert.Equal(t, "page_123", rec.Fields["page_id"])
	assert.Equal(t, "Quarterly Plan", rec.Fields["title"])
	assert.Equal(t, "workspace", rec.Fields["parent_type"])
	assert.Equal(t, false, rec.Fields["archived"])
	assert.NotNil(t, rec.Fields["blocks"])
}

func TestNormalizePages_NeverEditedUsesCreationTime(t *testing.T) {
	raw := pageRaw()
	delete(raw, "last_edited_time")

	rec, err := normalizePages(pagesSchema(t), raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), rec.Timestamp)
}

func TestNormalizePages_NoTitleProperty(t *testing.T) {
	raw := pageRaw()
	raw["properties"] = map[string]any{
		"Status": map[string]any{"type": "select", "select": map[string]any{"name": "Done"}},
	}

	rec, err := normalizePages(pagesSchema(t), raw)
	require.NoError(t, err)
	_, ok := rec.Field("title")
	assert.False(t, ok)
}
