package google

import (
	"time"

	"github.com/ariata-os/ariata/pkg/timestamp"
	"github.com/ariata-os/ariata/processor"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// Register installs the Google stream normalizers.
func Register(p *processor.Processor) {
	p.RegisterNormalizer("google/calendar", processor.NormalizerFunc(normalizeCalendar))
}

// normalizeCalendar flattens a {event, calendar} pair onto the calendar
// stream. The event's start time is the primary timestamp; all-day
// events carry a bare date and resolve to midnight UTC.
func normalizeCalendar(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	rec := record.NewNormalized(schema)

	event := record.Raw(raw.Map("event"))
	calendar := record.Raw(raw.Map("calendar"))

	start, allDay := parseEventTime(event.Map("start"))
	end, _ := parseEventTime(event.Map("end"))

	rec.Timestamp = start
	if !start.IsZero() {
		rec.Set("start_time", start)
	}
	if !end.IsZero() {
		rec.Set("end_time", end)
	}
	rec.Set("all_day", allDay)

	if id := event.String("id"); id != "" {
		rec.Set("event_id", id)
	}
	if id := calendar.String("id"); id != "" {
		rec.Set("calendar_id", id)
	}
	for _, key := range []string{"summary", "description", "location", "status"} {
		if s := event.String(key); s != "" {
			rec.Set(key, s)
		}
	}
	if s := event.String("htmlLink"); s != "" {
		rec.Set("html_link", s)
	}
	if s := calendar.String("timeZone"); s != "" {
		rec.Set("timezone", s)
	}
	if s := event.String("eventType"); s != "" {
		rec.Set("event_type", s)
	}

	for _, key := range []string{"creator", "organizer", "attendees", "reminders", "recurrence"} {
		if v, ok := event[key]; ok && v != nil {
			rec.Set(key, v)
		}
	}

	// Full event body for queries the flattened columns cannot answer.
	if len(event) > 0 {
		rec.Set("full_event", map[string]any(event))
	}

	rec.CaptureExtras(raw, map[string]bool{"event": true, "calendar": true})
	return rec, nil
}

// parseEventTime resolves a Calendar API time object. A dateTime key
// carries a zoned instant; a bare date key marks an all-day event.
func parseEventTime(obj map[string]any) (time.Time, bool) {
	if obj == nil {
		return time.Time{}, false
	}
	t := record.Raw(obj)
	if s := t.String("dateTime"); s != "" {
		return timestamp.Parse(s), false
	}
	if s := t.String("date"); s != "" {
		return timestamp.Parse(s), true
	}
	return time.Time{}, false
}
