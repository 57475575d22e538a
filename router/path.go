package router

import (
	"strings"
	"time"

	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/registry"
)

// extensions maps declared blob content types to path extensions. The
// audio entries form the fixed compression profile for device audio.
var extensions = map[string]string{
	"audio/flac":               "flac",
	"audio/wav":                "wav",
	"audio/mpeg":               "mp3",
	"application/json":         "json",
	"text/plain":               "txt",
	"application/octet-stream": "bin",
}

// extensionFor infers the path extension for a blob column. Structured
// columns default to json; anything else falls back to bin.
func extensionFor(col *registry.Column) string {
	if col != nil && col.ContentType != "" {
		if ext, ok := extensions[col.ContentType]; ok {
			return ext
		}
	}
	if col != nil && (col.Type == registry.TypeJSON || col.Type == registry.TypeText) {
		return "json"
	}
	return "bin"
}

// contentTypeFor returns the MIME type stored alongside the blob.
func contentTypeFor(col *registry.Column) string {
	if col != nil && col.ContentType != "" {
		return col.ContentType
	}
	if col != nil && (col.Type == registry.TypeJSON || col.Type == registry.TypeText) {
		return "application/json"
	}
	return "application/octet-stream"
}

// ComputePath substitutes into a blob path template. Deterministic given
// identical inputs; uniqueness comes entirely from the injected id.
// Recognized placeholders: {stream}, {year}, {month}, {day}, {field},
// {id}, {ext}.
func ComputePath(template, stream string, ts time.Time, field, id, ext string) string {
	year, month, day := timestamp.DateParts(ts)
	r := strings.NewReplacer(
		"{stream}", stream,
		"{year}", year,
		"{month}", month,
		"{day}", day,
		"{field}", field,
		"{id}", id,
		"{ext}", ext,
	)
	return r.Replace(template)
}
