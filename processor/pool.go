package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/metric"
	"github.com/ariata-os/ariata/pkg/worker"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// batchTask is one record of a batch queued on the worker pool. The
// request context rides along because the pool workers only see the
// process-lifetime context from Start.
type batchTask struct {
	ctx      context.Context
	schema   *registry.StreamSchema
	sourceID string
	raw      record.Raw
	counters *batchCounters
	wg       *sync.WaitGroup
}

type batchCounters struct {
	accepted   atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64
	failed     atomic.Int64
}

func (c *batchCounters) summary() Summary {
	return Summary{
		Accepted:   int(c.accepted.Load()),
		Duplicates: int(c.duplicates.Load()),
		Rejected:   int(c.rejected.Load()),
		Failed:     int(c.failed.Load()),
	}
}

// Start launches the concurrent batch pool. Without it ProcessBatch
// runs records sequentially, which is what tests and one-shot tools
// want. The metrics registry may be nil.
func (p *Processor) Start(ctx context.Context, reg *metric.Registry) error {
	opts := []worker.Option[batchTask]{}
	if reg != nil {
		opts = append(opts, worker.WithMetricsRegistry[batchTask](reg, "ingest_pipeline"))
	}
	pool := worker.NewPool[batchTask](p.cfg.Workers, p.cfg.QueueSize, p.runTask, opts...)
	if err := pool.Start(ctx); err != nil {
		return errors.WrapFatal(err, "Processor", "Start", "worker pool")
	}
	p.pool = pool
	return nil
}

// Stop drains the batch pool. Safe to call when Start was never called.
func (p *Processor) Stop(timeout time.Duration) error {
	if p.pool == nil {
		return nil
	}
	return p.pool.Stop(timeout)
}

// orderInsensitive reports whether records of one batch may be
// processed out of arrival order. Keyed dedup strategies need arrival
// order preserved so the newest revision of a key wins.
func orderInsensitive(schema *registry.StreamSchema) bool {
	switch schema.Dedup.Strategy {
	case registry.DedupUniqueKey, registry.DedupContentHash:
		return false
	default:
		return true
	}
}

// processConcurrent fans the batch out across the pool and waits for
// every record to finish. A full queue falls back to inline processing
// so a batch never deadlocks against its own backlog.
func (p *Processor) processConcurrent(ctx context.Context, schema *registry.StreamSchema, sourceID string, raws []record.Raw) Summary {
	counters := &batchCounters{}
	var wg sync.WaitGroup

	for _, raw := range raws {
		task := batchTask{
			ctx:      ctx,
			schema:   schema,
			sourceID: sourceID,
			raw:      raw,
			counters: counters,
			wg:       &wg,
		}
		wg.Add(1)
		if err := p.pool.Submit(task); err != nil {
			_ = p.runTask(ctx, task)
		}
	}

	wg.Wait()
	return counters.summary()
}

// runTask processes one queued record and tallies its outcome. The
// returned error feeds the pool's failure counter; handled outcomes
// (duplicates, rejections) are not failures.
func (p *Processor) runTask(_ context.Context, t batchTask) error {
	defer t.wg.Done()

	_, err := p.ProcessRecord(t.ctx, t.schema, t.sourceID, t.raw)
	switch {
	case err == nil:
		t.counters.accepted.Add(1)
	case errors.IsDuplicate(err):
		t.counters.duplicates.Add(1)
	case errors.IsInvalid(err):
		t.counters.rejected.Add(1)
	case errors.IsFatal(err):
		p.logger.Error("fatal record failure", "stream", t.schema.QualifiedName(), "error", err)
		t.counters.failed.Add(1)
		return err
	default:
		t.counters.failed.Add(1)
		return err
	}
	return nil
}
