// Package google normalizes Google Calendar events pulled through the
// Calendar API. Each raw record nests the event beside its owning
// calendar; the normalizer flattens both into the calendar stream's
// columns and keeps the full event body for reference.
package google
