package natsclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/metric"
)

// Config holds NATS connection settings.
type Config struct {
	URL            string        `yaml:"url"`
	Name           string        `yaml:"name"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxReconnects  int           `yaml:"max_reconnects"`
	ReconnectWait  time.Duration `yaml:"reconnect_wait"`
}

// DefaultConfig returns connection defaults suitable for a local server.
func DefaultConfig() Config {
	return Config{
		URL:            nats.DefaultURL,
		Name:           "ariata",
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxReconnects:  -1, // keep trying; the pipeline is long-lived
		ReconnectWait:  2 * time.Second,
	}
}

// Client owns one NATS connection and its JetStream context.
type Client struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	config  Config
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Client before it connects.
type Option func(*Client)

// WithMetrics keeps the NATS connection gauge in step with the
// connection lifecycle (connect, disconnect, reconnect, close).
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Connect establishes the NATS connection and JetStream context.
func Connect(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}

	c := &Client{config: cfg, logger: logger}
	for _, opt := range opts {
		opt(c)
	}

	natsOpts := []nats.Option{
		nats.Name(cfg.Name),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.recordStatus(false)
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.recordStatus(true)
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, natsOpts...)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSClient", "Connect", "connection")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapFatal(err, "NATSClient", "Connect", "jetstream context")
	}

	c.conn = conn
	c.js = js
	c.recordStatus(true)
	return c, nil
}

// recordStatus updates the connection gauge when metrics are wired.
func (c *Client) recordStatus(connected bool) {
	if c.metrics != nil {
		c.metrics.RecordNATSStatus(connected)
	}
}

// IsConnected reports the current connection state.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("nats drain failed", "error", err)
		c.conn.Close()
	}
	c.recordStatus(false)
}

// KeyValue opens (or creates) a KV bucket and wraps it in a KVStore.
func (c *Client) KeyValue(ctx context.Context, bucket string) (*KVStore, error) {
	kv, err := c.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "ariata dedup index",
		History:     1,
	})
	if err != nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("bucket %q: %w", bucket, err),
			"NATSClient", "KeyValue", "bucket open")
	}
	return &KVStore{bucket: kv, timeout: c.config.RequestTimeout}, nil
}

// ObjectStore opens (or creates) a JetStream object store bucket.
func (c *Client) ObjectStore(ctx context.Context, bucket string) (jetstream.ObjectStore, error) {
	os, err := c.js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: "ariata blob assets",
	})
	if err != nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("bucket %q: %w", bucket, err),
			"NATSClient", "ObjectStore", "bucket open")
	}
	return os, nil
}
