package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record outcomes, used as the "outcome" label on RecordsProcessed.
const (
	OutcomePersisted = "persisted"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Metrics holds the pipeline's core instrumentation.
type Metrics struct {
	RecordsReceived  *prometheus.CounterVec
	RecordsProcessed *prometheus.CounterVec
	RecordsRejected  *prometheus.CounterVec
	BlobBytesWritten *prometheus.CounterVec

	ProcessingDuration   *prometheus.HistogramVec
	StorageWriteDuration *prometheus.HistogramVec

	BatchesReceived *prometheus.CounterVec
	BatchSize       *prometheus.HistogramVec

	NATSConnected prometheus.Gauge
}

// NewMetrics creates the core metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		RecordsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ariata",
				Subsystem: "records",
				Name:      "received_total",
				Help:      "Raw records accepted for processing",
			},
			[]string{"stream"},
		),

		RecordsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ariata",
				Subsystem: "records",
				Name:      "processed_total",
				Help:      "Records by final outcome (persisted, duplicate, rejected, failed)",
			},
			[]string{"stream", "outcome"},
		),

		RecordsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ariata",
				Subsystem: "records",
				Name:      "rejected_total",
				Help:      "Records rejected by validation, by reason",
			},
			[]string{"stream", "reason"},
		),

		BlobBytesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ariata",
				Subsystem: "storage",
				Name:      "blob_bytes_total",
				Help:      "Bytes written to the blob store",
			},
			[]string{"stream", "field"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ariata",
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "End-to-end record processing duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stream"},
		),

		StorageWriteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ariata",
				Subsystem: "storage",
				Name:      "write_duration_seconds",
				Help:      "Storage write duration by store (relational, blob)",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"store"},
		),

		BatchesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ariata",
				Subsystem: "ingest",
				Name:      "batches_total",
				Help:      "Ingestion batches received",
			},
			[]string{"stream"},
		),

		BatchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ariata",
				Subsystem: "ingest",
				Name:      "batch_size",
				Help:      "Records per ingestion batch",
				Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"stream"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ariata",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),
	}
}

// RecordReceived increments the received counter for a stream.
func (m *Metrics) RecordReceived(stream string) {
	m.RecordsReceived.WithLabelValues(stream).Inc()
}

// RecordOutcome increments the processed counter with a final outcome.
func (m *Metrics) RecordOutcome(stream, outcome string) {
	m.RecordsProcessed.WithLabelValues(stream, outcome).Inc()
}

// RecordRejection increments the rejection counter with a reason.
func (m *Metrics) RecordRejection(stream, reason string) {
	m.RecordsRejected.WithLabelValues(stream, reason).Inc()
}

// RecordBlobBytes adds to the blob byte counter.
func (m *Metrics) RecordBlobBytes(stream, field string, n int) {
	m.BlobBytesWritten.WithLabelValues(stream, field).Add(float64(n))
}

// RecordProcessingDuration observes one record's pipeline latency.
func (m *Metrics) RecordProcessingDuration(stream string, d time.Duration) {
	m.ProcessingDuration.WithLabelValues(stream).Observe(d.Seconds())
}

// RecordStorageWrite observes one storage write's latency.
func (m *Metrics) RecordStorageWrite(store string, d time.Duration) {
	m.StorageWriteDuration.WithLabelValues(store).Observe(d.Seconds())
}

// RecordBatch observes an ingestion batch and its size.
func (m *Metrics) RecordBatch(stream string, size int) {
	m.BatchesReceived.WithLabelValues(stream).Inc()
	m.BatchSize.WithLabelValues(stream).Observe(float64(size))
}

// RecordNATSStatus updates the connection gauge.
func (m *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.NATSConnected.Set(value)
}
