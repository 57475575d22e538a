// Package main implements the entry point for the Ariata ingestion
// engine. Ariata receives personal data streams from device agents and
// sync workers, normalizes and validates each record against the
// stream catalog, and routes fields between relational and blob
// storage.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ariata-os/ariata/config"
	"github.com/ariata-os/ariata/dedup"
	"github.com/ariata-os/ariata/gateway"
	"github.com/ariata-os/ariata/metric"
	"github.com/ariata-os/ariata/natsclient"
	"github.com/ariata-os/ariata/processor"
	"github.com/ariata-os/ariata/registry"
	"github.com/ariata-os/ariata/router"
	"github.com/ariata-os/ariata/source/google"
	"github.com/ariata-os/ariata/source/ios"
	"github.com/ariata-os/ariata/source/mac"
	"github.com/ariata-os/ariata/source/notion"
	"github.com/ariata-os/ariata/source/strava"
	"github.com/ariata-os/ariata/storage/objectstore"
	"github.com/ariata-os/ariata/storage/postgres"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ariata"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cliCfg.LogLevel != "" {
		cfg.LogLevel = cliCfg.LogLevel
	}

	logger := setupLogger(cfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		slog.Info("configuration is valid")
		return nil
	}

	slog.Info("starting ariata ingestion engine",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	reg, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	slog.Info("stream catalog loaded", "streams", len(reg.Streams()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gw, cleanup, err := setupPipeline(ctx, cfg, reg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	err = gw.Start(ctx)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	slog.Info("ariata shutdown complete")
	return nil
}

// loadCatalog reads the stream catalog, preferring an on-disk override
// to the embedded copy.
func loadCatalog(cfg config.Config) (*registry.Registry, error) {
	if cfg.CatalogPath != "" {
		reg, err := registry.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogPath, err)
		}
		return reg, nil
	}
	reg, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("load embedded catalog: %w", err)
	}
	return reg, nil
}

// setupPipeline connects NATS and Postgres, assembles the processor
// with all source normalizers, and returns the gateway ready to serve.
// The returned cleanup closes the storage connections.
func setupPipeline(
	ctx context.Context,
	cfg config.Config,
	reg *registry.Registry,
	logger *slog.Logger,
) (*gateway.Gateway, func(), error) {
	metrics := metric.NewRegistry()

	slog.Info("connecting to NATS", "url", cfg.NATS.URL)
	nc, err := natsclient.Connect(cfg.NATS, logger, natsclient.WithMetrics(metrics.Metrics))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	kv, err := nc.KeyValue(ctx, cfg.DedupBucket)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("open dedup bucket: %w", err)
	}

	assetBucket, err := nc.ObjectStore(ctx, cfg.ObjectStore.Bucket)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("open asset bucket: %w", err)
	}

	slog.Info("connecting to Postgres")
	pg, err := postgres.Connect(ctx, cfg.Postgres, logger)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("connect to Postgres: %w", err)
	}

	proc := processor.New(
		reg,
		dedup.New(dedup.NewKVIndex(kv)),
		router.New(),
		pg,
		objectstore.New(assetBucket, cfg.ObjectStore, logger),
		metrics.Metrics,
		logger,
		cfg.Processor,
	)
	registerNormalizers(proc)

	if err := proc.Start(ctx, metrics); err != nil {
		pg.Close()
		nc.Close()
		return nil, nil, fmt.Errorf("start pipeline: %w", err)
	}

	gw := gateway.New(cfg.Gateway, proc, reg, metrics, logger)

	cleanup := func() {
		if err := proc.Stop(5 * time.Second); err != nil {
			slog.Warn("pipeline drain incomplete", "error", err)
		}
		pg.Close()
		nc.Close()
	}
	return gw, cleanup, nil
}

// registerNormalizers installs the per-source normalizers. Streams not
// covered here fall back to the generic field-name mapping.
func registerNormalizers(p *processor.Processor) {
	ios.Register(p)
	google.Register(p)
	mac.Register(p)
	strava.Register(p)
	notion.Register(p)
}
