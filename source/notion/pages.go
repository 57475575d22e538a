package notion

import (
	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/processor"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// Register installs the Notion stream normalizers.
func Register(p *processor.Processor) {
	p.RegisterNormalizer("notion/pages", processor.NormalizerFunc(normalizePages))
}

// normalizePages maps one page version onto the pages stream. The last
// edit time is the primary timestamp so versions of the same page order
// chronologically; pages never edited fall back to creation time.
func normalizePages(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)

	created := timestamp.Parse(raw["created_time"])
	edited := timestamp.Parse(raw["last_edited_time"])
	rec.Timestamp = edited
	if rec.Timestamp.IsZero() {
		rec.Timestamp = created
	}
	if !created.IsZero() {
		rec.Set("created_time", created)
	}
	if !edited.IsZero() {
		rec.Set("last_edited_time", edited)
	}

	handled := map[string]bool{
		"id": true, "created_time": true, "last_edited_time": true,
		"url": true, "icon": true, "parent": true, "archived": true,
		"properties": true, "blocks": true, "attachments": true,
	}

	if id := raw.String("id"); id != "" {
		rec.Set("page_id", id)
	}
	if u := raw.String("url"); u != "" {
		rec.Set("url", u)
	}
	if v := raw.Map("icon"); v != nil {
		rec.Set("icon", v)
	}
	if parent := record.Raw(raw.Map("parent")); parent != nil {
		if pt := parent.String("type"); pt != "" {
			rec.Set("parent_type", pt)
		}
	}
	if _, ok := raw["archived"]; ok {
		rec.Set("archived", raw.Bool("archived"))
	}

	if props := raw.Map("properties"); props != nil {
		rec.Set("properties", props)
		if title := extractTitle(props); title != "" {
			rec.Set("title", title)
		}
	}

	// Block tree and attachments stay whole; the storage router moves
	// them to the blob store.
	if v, ok := raw["blocks"]; ok && v != nil {
		rec.Set("blocks", v)
	}
	if v, ok := raw["attachments"]; ok && v != nil {
		rec.Set("attachments", v)
	}

	rec.CaptureExtras(raw, handled)
	return rec, nil
}

// extractTitle walks page properties for the title property and joins
// its rich text fragments.
func extractTitle(props map[string]any) string {
	for _, v := range props {
		prop, ok := v.(map[string]any)
		if !ok || prop["type"] != "title" {
			continue
		}
		fragments, ok := prop["title"].([]any)
		if !ok {
			continue
		}
		var title string
		for _, f := range fragments {
			if frag, ok := f.(map[string]any); ok {
				if s, ok := frag["plain_text"].(string); ok {
					title += s
				}
			}
		}
		return title
	}
	return ""
}
