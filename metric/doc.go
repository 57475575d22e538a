// Package metric owns the Prometheus registry and the pipeline's core
// instrumentation: per-stream record counters by outcome, processing
// and storage write latencies, and connectivity gauges.
//
// The registry is private to the process (no default-registry globals)
// so tests can create isolated instances without collisions.
package metric
