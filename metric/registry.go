package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ariata-os/ariata/errors"
)

// Registry manages the process-local Prometheus registry plus the core
// pipeline metrics. Components may register their own collectors under
// a namespaced key.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registered         map[string]prometheus.Collector
	mu                 sync.Mutex
}

// NewRegistry creates a registry with core metrics and Go runtime
// collectors pre-registered.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		Metrics:            NewMetrics(),
		registered:         make(map[string]prometheus.Collector),
	}

	r.prometheusRegistry.MustRegister(
		r.Metrics.RecordsReceived,
		r.Metrics.RecordsProcessed,
		r.Metrics.RecordsRejected,
		r.Metrics.BlobBytesWritten,
		r.Metrics.ProcessingDuration,
		r.Metrics.StorageWriteDuration,
		r.Metrics.BatchesReceived,
		r.Metrics.BatchSize,
		r.Metrics.NATSConnected,
	)

	r.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry exposes the underlying registry for the HTTP
// handler.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Register adds a component-owned collector under component.name.
func (r *Registry) Register(component, name string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	if _, exists := r.registered[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered", key),
			"MetricRegistry", "Register", "duplicate registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			return errors.WrapInvalid(err, "MetricRegistry", "Register",
				fmt.Sprintf("prometheus conflict for %s", key))
		}
		return errors.WrapFatal(err, "MetricRegistry", "Register", "prometheus registration")
	}

	r.registered[key] = collector
	return nil
}

// Unregister removes a component-owned collector. Returns false if the
// key is unknown.
func (r *Registry) Unregister(component, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, name)
	collector, exists := r.registered[key]
	if !exists {
		return false
	}
	if !r.prometheusRegistry.Unregister(collector) {
		return false
	}
	delete(r.registered, key)
	return true
}
