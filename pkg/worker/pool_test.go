package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariata-os/ariata/metric"
)

// ingestItem stands in for one queued record of an ingestion batch.
type ingestItem struct {
	stream string
	seq    int
	fail   bool
}

func TestNewPool_Defaults(t *testing.T) {
	noop := func(context.Context, ingestItem) error { return nil }

	p := NewPool(5, 100, noop)
	assert.Equal(t, 5, p.Stats().Workers)
	assert.Equal(t, 100, p.Stats().QueueSize)

	p = NewPool(0, 0, noop)
	assert.Equal(t, 10, p.Stats().Workers)
	assert.Equal(t, 1000, p.Stats().QueueSize)
}

func TestNewPool_NilProcessPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewPool[ingestItem](5, 100, nil)
	})
}

func TestPool_ProcessesQueuedItems(t *testing.T) {
	var processed atomic.Int64
	var wg sync.WaitGroup

	p := NewPool(3, 50, func(_ context.Context, item ingestItem) error {
		defer wg.Done()
		processed.Add(1)
		return nil
	})
	require.NoError(t, p.Start(context.Background()))

	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(ingestItem{stream: "ios/healthkit", seq: i}))
	}
	wg.Wait()

	require.NoError(t, p.Stop(5*time.Second))
	assert.Equal(t, int64(20), processed.Load())
	assert.Equal(t, int64(20), p.Stats().Submitted)
	assert.Equal(t, int64(20), p.Stats().Processed)
}

func TestPool_LifecycleErrors(t *testing.T) {
	p := NewPool(1, 1, func(context.Context, ingestItem) error { return nil })

	assert.ErrorIs(t, p.Submit(ingestItem{}), ErrPoolNotStarted)

	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), ErrPoolAlreadyStarted)

	require.NoError(t, p.Stop(time.Second))
	assert.ErrorIs(t, p.Submit(ingestItem{}), ErrPoolStopped)

	// Stop is idempotent.
	assert.NoError(t, p.Stop(time.Second))
}

func TestPool_QueueFullSignalsBackpressure(t *testing.T) {
	running := make(chan struct{}, 2)
	release := make(chan struct{})
	var wg sync.WaitGroup

	p := NewPool(1, 1, func(_ context.Context, item ingestItem) error {
		defer wg.Done()
		running <- struct{}{}
		<-release
		return nil
	})
	require.NoError(t, p.Start(context.Background()))

	// First item occupies the worker, second fills the queue; further
	// submissions must be refused, not buffered.
	wg.Add(1)
	require.NoError(t, p.Submit(ingestItem{seq: 0}))
	<-running
	wg.Add(1)
	require.NoError(t, p.Submit(ingestItem{seq: 1}))

	for i := 2; i < 6; i++ {
		assert.ErrorIs(t, p.Submit(ingestItem{seq: i}), ErrQueueFull)
	}
	assert.Equal(t, int64(4), p.Stats().Dropped)

	close(release)
	wg.Wait()
	require.NoError(t, p.Stop(5*time.Second))
}

func TestPool_FailuresCountedNotFatal(t *testing.T) {
	var wg sync.WaitGroup

	p := NewPool(2, 20, func(_ context.Context, item ingestItem) error {
		defer wg.Done()
		if item.fail {
			return fmt.Errorf("record %d unprocessable", item.seq)
		}
		return nil
	})
	require.NoError(t, p.Start(context.Background()))

	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(ingestItem{seq: i, fail: i%2 == 0}))
	}
	wg.Wait()
	require.NoError(t, p.Stop(5*time.Second))

	stats := p.Stats()
	assert.Equal(t, int64(10), stats.Processed)
	assert.Equal(t, int64(5), stats.Failed)
}

func TestPool_ContextCancellationStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPool(2, 10, func(context.Context, ingestItem) error { return nil })
	require.NoError(t, p.Start(ctx))

	cancel()

	// Workers exit on cancellation; Stop only has the observer left to
	// reap and must not time out.
	assert.NoError(t, p.Stop(5*time.Second))
}

func TestPool_MetricsRegistered(t *testing.T) {
	registry := metric.NewRegistry()
	var wg sync.WaitGroup

	p := NewPool(1, 10,
		func(_ context.Context, item ingestItem) error {
			defer wg.Done()
			return nil
		},
		WithMetricsRegistry[ingestItem](registry, "ingest_pipeline"),
	)
	require.NoError(t, p.Start(context.Background()))

	wg.Add(1)
	require.NoError(t, p.Submit(ingestItem{stream: "ios/mic"}))
	wg.Wait()
	require.NoError(t, p.Stop(5*time.Second))

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["ingest_pipeline_submitted_total"])
	assert.True(t, names["ingest_pipeline_processed_total"])
	assert.True(t, names["ingest_pipeline_queue_depth"])
}
