// Package worker provides a generic, bounded worker pool.
//
// A pool runs a fixed number of goroutines draining a buffered work
// channel. Submit is non-blocking: a full queue returns ErrQueueFull so
// callers get a backpressure signal instead of an unbounded backlog.
// Workers receive the context passed to Start and exit when it is
// cancelled or the channel is closed.
//
// Statistics are always tracked with atomics; Prometheus metrics are
// opt-in via WithMetricsRegistry:
//
//	pool := worker.NewPool[Job](
//	    10, 1000, processJob,
//	    worker.WithMetricsRegistry[Job](registry, "ingest_pipeline"),
//	)
//
// Worker count is fixed at creation. There is no priority ordering and
// no per-item cancellation; bound per-item work with the context inside
// the processor function.
package worker
