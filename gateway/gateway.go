package gateway

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ariata-os/ariata/metric"
	"github.com/ariata-os/ariata/processor"
	"github.com/ariata-os/ariata/registry"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string        `yaml:"addr"`
	MaxRequestSize  int64         `yaml:"max_request_size"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns server defaults. The request size ceiling is
// generous because audio batches carry base64 payloads.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxRequestSize:  64 << 20, // 64 MiB
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Gateway is the ingestion HTTP server.
type Gateway struct {
	config    Config
	processor *processor.Processor
	registry  *registry.Registry
	metrics   *metric.Registry
	logger    *slog.Logger
	server    *http.Server

	requestsTotal  atomic.Uint64
	requestsFailed atomic.Uint64
}

// New assembles a Gateway. The metrics registry may be nil.
func New(cfg Config, proc *processor.Processor, reg *registry.Registry, metrics *metric.Registry, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = DefaultConfig().MaxRequestSize
	}
	g := &Gateway{
		config:    cfg,
		processor: proc,
		registry:  reg,
		metrics:   metrics,
		logger:    logger.With("component", "gateway"),
	}
	g.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      g.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return g
}

// Handler builds the route mux. Exposed for tests.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/ingest/{source}/{stream}", g.handleIngest)
	mux.HandleFunc("GET /api/v1/streams", g.handleStreams)
	mux.HandleFunc("GET /healthz", g.handleHealth)
	if g.metrics != nil {
		mux.Handle("/metrics", g.metrics.Handler())
	}
	return mux
}

// Start serves until ctx is cancelled, then drains connections within
// the shutdown timeout.
func (g *Gateway) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Addr)
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), g.config.ShutdownTimeout)
		defer cancel()
		return g.server.Shutdown(shutdownCtx)
	}
}

// handleHealth reports liveness and the running request counters.
func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"requests_total":  g.requestsTotal.Load(),
		"requests_failed": g.requestsFailed.Load(),
	})
}

// handleStreams lists the registered streams so agents can discover
// what the catalog accepts.
func (g *Gateway) handleStreams(w http.ResponseWriter, _ *http.Request) {
	type streamInfo struct {
		Source  string `json:"source"`
		Stream  string `json:"stream"`
		Table   string `json:"table"`
		Dedup   string `json:"dedup"`
		Storage string `json:"storage"`
	}
	var out []streamInfo
	for _, s := range g.registry.Streams() {
		out = append(out, streamInfo{
			Source:  s.Source,
			Stream:  s.Name,
			Table:   s.Table,
			Dedup:   string(s.Dedup.Strategy),
			Storage: string(s.Storage.Strategy),
		})
	}
	g.writeJSON(w, http.StatusOK, out)
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Warn("response encode failed", "error", err)
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, status int, msg string) {
	g.requestsFailed.Add(1)
	g.writeJSON(w, status, map[string]string{"error": msg})
}

// requestID extracts the caller's X-Request-ID or generates one so log
// lines correlate across a batch.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
