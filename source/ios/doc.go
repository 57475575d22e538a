// Package ios normalizes payloads from the iPhone agent: HealthKit
// samples, location fixes, and microphone recordings.
//
// HealthKit batches are heterogeneous. A single push mixes heart rate,
// steps, sleep, and workouts, distinguished only by the sample's type
// identifier, so the normalizer dispatches on that identifier and maps
// each variant's value onto its dedicated column. Audio recordings
// arrive base64-encoded and are decoded here so the storage router
// sees raw bytes.
package ios
