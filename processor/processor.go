package processor

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ariata-os/ariata/dedup"
	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/metric"
	"github.com/ariata-os/ariata/pkg/retry"
	"github.com/ariata-os/ariata/pkg/worker"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
	"github.com/ariata-os/ariata/router"
	"github.com/ariata-os/ariata/storage"
	"github.com/ariata-os/ariata/validate"
)

// Config holds pipeline tuning knobs.
type Config struct {
	// WriteTimeout bounds each individual storage write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retry governs storage write retries.
	Retry retry.Config `yaml:"retry"`

	// Workers sizes the concurrent batch pool started by Start. Records
	// within a batch are processed in parallel across the pool.
	Workers int `yaml:"workers"`

	// QueueSize bounds the batch pool's work queue.
	QueueSize int `yaml:"queue_size"`
}

// DefaultConfig returns pipeline defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		Retry:        retry.DefaultConfig(),
		Workers:      4,
		QueueSize:    256,
	}
}

// Persisted describes a successfully stored record.
type Persisted struct {
	ID        string
	Table     string
	BlobPaths map[string]string // field name to blob path, empty for relational_only
}

// Processor is the ingestion pipeline engine. Safe for concurrent use.
type Processor struct {
	registry    *registry.Registry
	normalizers map[string]Normalizer
	generic     Normalizer
	dedup       *dedup.Deduplicator
	router      *router.Router
	relational  storage.RelationalStore
	blobs       storage.BlobStore
	metrics     *metric.Metrics
	logger      *slog.Logger
	cfg         Config
	pool        *worker.Pool[batchTask]
}

// New assembles a Processor. The metrics and logger parameters may be
// nil; nil metrics disables instrumentation.
func New(
	reg *registry.Registry,
	d *dedup.Deduplicator,
	r *router.Router,
	relational storage.RelationalStore,
	blobs storage.BlobStore,
	metrics *metric.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Processor{
		registry:    reg,
		normalizers: make(map[string]Normalizer),
		generic:     GenericNormalizer(),
		dedup:       d,
		router:      r,
		relational:  relational,
		blobs:       blobs,
		metrics:     metrics,
		logger:      logger.With("component", "processor"),
		cfg:         cfg,
	}
}

// RegisterNormalizer installs a source-specific normalizer for a
// qualified stream name ("source/stream"). Streams without one use the
// generic field-name mapping.
func (p *Processor) RegisterNormalizer(qualified string, n Normalizer) {
	p.normalizers[qualified] = n
}

// ProcessRecord runs one raw record through the full pipeline.
//
// Returns errors.ErrDuplicateRecord (via errors.IsDuplicate) for the
// idempotent skip of an already-seen record; that is a successful
// no-op, not a failure. Invalid-class errors mean the record is
// malformed and must not be resent. Transient errors mean storage
// trouble; the record was not persisted and the dedup claim was
// released, so a resend will be processed fresh.
func (p *Processor) ProcessRecord(ctx context.Context, schema *registry.StreamSchema, sourceID string, raw record.Raw) (*Persisted, error) {
	start := time.Now()
	qn := schema.QualifiedName()
	if p.metrics != nil {
		p.metrics.RecordReceived(qn)
	}

	rec, err := p.normalize(schema, raw)
	if err != nil {
		p.reject(qn, "normalize")
		return nil, errors.WrapInvalid(err, "Processor", "ProcessRecord", "normalize")
	}

	rec.ID = uuid.NewString()
	rec.SourceID = sourceID
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.ApplyDefaults()

	if err := validate.Record(schema, rec); err != nil {
		p.reject(qn, rejectionReason(err))
		return nil, err
	}

	dup, claim, err := p.dedup.IsDuplicate(ctx, schema, rec)
	if err != nil {
		p.outcome(qn, metric.OutcomeFailed)
		return nil, err
	}
	if dup {
		p.outcome(qn, metric.OutcomeDuplicate)
		return nil, errors.ErrDuplicateRecord
	}

	row, blobs, err := p.router.Route(schema, rec)
	if err != nil {
		p.release(ctx, claim)
		p.reject(qn, "route")
		return nil, err
	}

	// Blob writes go first so the relational row never references a
	// path that was not written.
	for _, blob := range blobs {
		if err := p.writeBlob(ctx, blob); err != nil {
			p.release(ctx, claim)
			p.outcome(qn, metric.OutcomeFailed)
			return nil, err
		}
		if p.metrics != nil {
			p.metrics.RecordBlobBytes(qn, blob.Field, len(blob.Content))
		}
	}

	if err := p.writeRow(ctx, row); err != nil {
		p.release(ctx, claim)
		p.outcome(qn, metric.OutcomeFailed)
		return nil, err
	}

	p.outcome(qn, metric.OutcomePersisted)
	if p.metrics != nil {
		p.metrics.RecordProcessingDuration(qn, time.Since(start))
	}

	persisted := &Persisted{ID: rec.ID, Table: row.Table, BlobPaths: make(map[string]string, len(blobs))}
	for _, blob := range blobs {
		persisted.BlobPaths[blob.Field] = blob.Path
	}
	return persisted, nil
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
	Failed     int `json:"failed"`
}

// ProcessBatch looks up the stream once and runs every record through
// the pipeline. Per-record failures are counted, not propagated; the
// only error return is an unknown stream, which rejects the whole
// batch.
func (p *Processor) ProcessBatch(ctx context.Context, source, stream, sourceID string, raws []record.Raw) (Summary, error) {
	schema, err := p.registry.Lookup(source, stream)
	if err != nil {
		return Summary{}, err
	}

	if p.metrics != nil {
		p.metrics.RecordBatch(schema.QualifiedName(), len(raws))
	}

	// unique_key and content_hash streams stay sequential so the latest
	// revision of a key within one batch wins deterministically.
	if p.pool != nil && orderInsensitive(schema) {
		return p.processConcurrent(ctx, schema, sourceID, raws), nil
	}

	var s Summary
	for _, raw := range raws {
		_, err := p.ProcessRecord(ctx, schema, sourceID, raw)
		switch {
		case err == nil:
			s.Accepted++
		case errors.IsDuplicate(err):
			s.Duplicates++
		case errors.IsInvalid(err):
			s.Rejected++
		case errors.IsFatal(err):
			// Broken invariant (e.g. a path collision). Count it and
			// keep going; the operator sees it in the log.
			p.logger.Error("fatal record failure", "stream", schema.QualifiedName(), "error", err)
			s.Failed++
		default:
			s.Failed++
		}
	}
	return s, nil
}

func (p *Processor) normalize(schema *registry.StreamSchema, raw record.Raw) (*record.Normalized, error) {
	n, ok := p.normalizers[schema.QualifiedName()]
	if !ok {
		n = p.generic
	}
	return n.Normalize(schema, raw)
}

func (p *Processor) writeBlob(ctx context.Context, blob router.BlobPayload) error {
	start := time.Now()
	err := retry.Do(ctx, p.cfg.Retry, func() error {
		writeCtx, cancel := context.WithTimeout(ctx, p.cfg.WriteTimeout)
		defer cancel()

		if err := p.blobs.Put(writeCtx, blob.Path, blob.Content, blob.ContentType); err != nil {
			if errors.IsFatal(err) {
				return retry.NonRetryable(err)
			}
			return err
		}
		return nil
	})
	if p.metrics != nil {
		p.metrics.RecordStorageWrite("blob", time.Since(start))
	}
	return err
}

func (p *Processor) writeRow(ctx context.Context, row router.RelationalPayload) error {
	start := time.Now()
	err := retry.Do(ctx, p.cfg.Retry, func() error {
		writeCtx, cancel := context.WithTimeout(ctx, p.cfg.WriteTimeout)
		defer cancel()
		return p.relational.InsertRow(writeCtx, row.Table, row.Columns)
	})
	if p.metrics != nil {
		p.metrics.RecordStorageWrite("relational", time.Since(start))
	}
	return err
}

// release returns a dedup claim after a persistence failure so the
// record can be resent. A failed release is logged, not propagated:
// the write error is what the caller needs to see.
func (p *Processor) release(ctx context.Context, claim *dedup.Claim) {
	if err := claim.Release(ctx); err != nil {
		p.logger.Warn("dedup claim release failed", "error", err)
	}
}

func (p *Processor) reject(stream, reason string) {
	if p.metrics != nil {
		p.metrics.RecordRejection(stream, reason)
		p.metrics.RecordOutcome(stream, metric.OutcomeRejected)
	}
}

func (p *Processor) outcome(stream, outcome string) {
	if p.metrics != nil {
		p.metrics.RecordOutcome(stream, outcome)
	}
}

// rejectionReason labels a validation error for the rejection counter.
func rejectionReason(err error) string {
	var mfe *errors.MissingFieldError
	var ore *errors.OutOfRangeError
	var iee *errors.InvalidEnumError
	var tle *errors.TooLongError
	switch {
	case stderrors.As(err, &mfe):
		return "missing_field"
	case stderrors.As(err, &ore):
		return "out_of_range"
	case stderrors.As(err, &iee):
		return "invalid_enum"
	case stderrors.As(err, &tle):
		return "too_long"
	default:
		return "invalid"
	}
}
