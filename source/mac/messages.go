package mac

import (
	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/processor"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// Register installs the Mac stream normalizers.
func Register(p *processor.Processor) {
	p.RegisterNormalizer("mac/messages", processor.NormalizerFunc(normalizeMessages))
	p.RegisterNormalizer("mac/apps", processor.NormalizerFunc(normalizeApps))
}

// normalizeMessages maps one Messages row onto the messages stream.
// The message's send date doubles as the primary timestamp.
func normalizeMessages(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)

	date := timestamp.ParseAppleEpoch(raw["date"])
	rec.Timestamp = date
	if !date.IsZero() {
		rec.Set("date", date)
	}
	if ts := timestamp.ParseAppleEpoch(raw["date_read"]); !ts.IsZero() {
		rec.Set("date_read", ts)
	}
	if ts := timestamp.ParseAppleEpoch(raw["date_delivered"]); !ts.IsZero() {
		rec.Set("date_delivered", ts)
	}

	handled := map[string]bool{
		"date": true, "date_read": true, "date_delivered": true,
	}

	for _, key := range []string{
		"message_id", "chat_id", "handle_id", "text", "service",
		"group_title", "associated_message_guid", "expressive_send_style_id",
	} {
		if s := raw.String(key); s != "" {
			rec.Set(key, s)
		}
		handled[key] = true
	}

	for _, key := range []string{
		"is_from_me", "is_read", "is_delivered", "is_sent", "cache_has_attachments",
	} {
		if _, ok := raw[key]; ok {
			rec.Set(key, raw.Bool(key))
		}
		handled[key] = true
	}

	for _, key := range []string{"attachment_count", "associated_message_type"} {
		if v, ok := raw.Int(key); ok {
			rec.Set(key, v)
		}
		handled[key] = true
	}

	if v, ok := raw["attachment_info"]; ok && v != nil {
		rec.Set("attachment_info", v)
	}
	handled["attachment_info"] = true

	rec.CaptureExtras(raw, handled)
	return rec, nil
}

// normalizeApps maps one application focus event. Pure passthrough;
// the stream records facts without interpretation.
func normalizeApps(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)
	rec.Timestamp = timestamp.Parse(raw["timestamp"])

	handled := map[string]bool{"timestamp": true}
	for _, key := range []string{"app_name", "bundle_id", "event_type"} {
		if s := raw.String(key); s != "" {
			rec.Set(key, s)
		}
		handled[key] = true
	}

	rec.CaptureExtras(raw, handled)
	return rec, nil
}
