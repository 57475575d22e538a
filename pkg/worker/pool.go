package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ariata-os/ariata/metric"
)

// Pool runs a fixed set of goroutines draining a bounded queue of T.
// Submit never blocks; a full queue is reported to the caller instead
// of growing without bound.
type Pool[T any] struct {
	workers int
	process func(context.Context, T) error
	queue   chan T
	done    chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup

	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	registry *metric.Registry
	prefix   string
	metrics  *poolMetrics
}

// Option configures a Pool at construction.
type Option[T any] func(*Pool[T])

// WithMetricsRegistry publishes queue depth, throughput, and latency
// metrics under the given name prefix.
func WithMetricsRegistry[T any](registry *metric.Registry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		p.registry = registry
		p.prefix = prefix
	}
}

// NewPool builds a pool of workers goroutines over a queue of queueSize
// items. Non-positive sizes fall back to defaults. A nil process
// function is a programming error and panics.
func NewPool[T any](workers, queueSize int, process func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = 10
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	if process == nil {
		panic(ErrNilProcessor)
	}

	p := &Pool[T]{
		workers: workers,
		process: process,
		queue:   make(chan T, queueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry != nil && p.prefix != "" {
		p.metrics = newPoolMetrics(p.registry, p.prefix)
	}
	return p
}

// Start launches the workers. They run until ctx is cancelled or Stop
// closes the queue; the same ctx reaches the process function.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.drain(ctx)
	}
	if p.metrics != nil {
		p.wg.Add(1)
		go p.observeQueue(ctx)
	}
	return nil
}

// Submit queues one work item without blocking. ErrQueueFull signals
// backpressure; the item was not queued and the caller decides whether
// to retry, process inline, or drop.
func (p *Pool[T]) Submit(item T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- item:
		p.submitted.Add(1)
		if p.metrics != nil {
			p.metrics.submitted.Inc()
			p.metrics.queueDepth.Set(float64(len(p.queue)))
		}
		return nil
	default:
		p.dropped.Add(1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to finish what is
// already queued. Idempotent; ErrStopTimeout means workers were still
// busy when the deadline passed.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return nil
	}
	p.stopped = true
	close(p.queue)
	close(p.done)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}

// PoolStats is a point-in-time snapshot of pool activity.
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// Stats reads the counters. Always available, metrics or not.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  cap(p.queue),
		QueueDepth: len(p.queue),
		Submitted:  p.submitted.Load(),
		Processed:  p.processed.Load(),
		Failed:     p.failed.Load(),
		Dropped:    p.dropped.Load(),
	}
}

// drain is one worker's loop.
func (p *Pool[T]) drain(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.queue:
			if !ok {
				return
			}

			start := time.Now()
			err := p.process(ctx, item)

			p.processed.Add(1)
			if err != nil {
				p.failed.Add(1)
			}
			if p.metrics != nil {
				p.metrics.processed.Inc()
				status := "success"
				if err != nil {
					p.metrics.failed.Inc()
					status = "error"
				}
				p.metrics.processingTime.WithLabelValues(status).Observe(time.Since(start).Seconds())
			}
		}
	}
}

// observeQueue keeps the depth and utilization gauges current. Gauges
// are sampled once a second rather than on every submit.
func (p *Pool[T]) observeQueue(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			depth := float64(len(p.queue))
			p.metrics.queueDepth.Set(depth)
			p.metrics.utilization.Set(depth / float64(cap(p.queue)))
		}
	}
}

// poolMetrics holds the Prometheus collectors for one pool.
type poolMetrics struct {
	queueDepth     prometheus.Gauge
	utilization    prometheus.Gauge
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

func newPoolMetrics(registry *metric.Registry, prefix string) *poolMetrics {
	m := &poolMetrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_queue_depth",
			Help: "Current worker pool queue depth",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_utilization",
			Help: "Worker pool queue utilization (0-1)",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_submitted_total",
			Help: "Total work items submitted",
		}),
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_processed_total",
			Help: "Total work items processed",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_failed_total",
			Help: "Total work items whose processing returned an error",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_dropped_total",
			Help: "Total work items dropped because the queue was full",
		}),
		processingTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_processing_duration_seconds",
			Help:    "Time spent processing one work item",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"status"}),
	}

	const component = "worker_pool"
	registry.Register(component, prefix+"_queue_depth", m.queueDepth)
	registry.Register(component, prefix+"_utilization", m.utilization)
	registry.Register(component, prefix+"_submitted_total", m.submitted)
	registry.Register(component, prefix+"_processed_total", m.processed)
	registry.Register(component, prefix+"_failed_total", m.failed)
	registry.Register(component, prefix+"_dropped_total", m.dropped)
	registry.Register(component, prefix+"_processing_duration_seconds", m.processingTime)
	return m
}
