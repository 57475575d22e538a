package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/gateway"
	"github.com/ariata-os/ariata/natsclient"
	"github.com/ariata-os/ariata/processor"
	"github.com/ariata-os/ariata/storage/objectstore"
	"github.com/ariata-os/ariata/storage/postgres"
)

// Config is the full process configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CatalogPath optionally overrides the embedded stream catalog.
	CatalogPath string `yaml:"catalog_path"`

	// DedupBucket is the NATS KV bucket holding the dedup index.
	DedupBucket string `yaml:"dedup_bucket"`

	Gateway     gateway.Config     `yaml:"gateway"`
	NATS        natsclient.Config  `yaml:"nats"`
	Postgres    postgres.Config    `yaml:"postgres"`
	ObjectStore objectstore.Config `yaml:"object_store"`
	Processor   processor.Config   `yaml:"processor"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:    "info",
		DedupBucket: "ARIATA_DEDUP",
		Gateway:     gateway.DefaultConfig(),
		NATS:        natsclient.DefaultConfig(),
		Postgres:    postgres.DefaultConfig(),
		ObjectStore: objectstore.DefaultConfig(),
		Processor:   processor.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.WrapFatal(err, "Config", "Load", "read file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.WrapInvalid(err, "Config", "Load", "parse yaml")
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers deployment-specific overrides. Only the settings
// that realistically differ between environments get a variable.
func (c *Config) applyEnv() {
	if v := os.Getenv("ARIATA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ARIATA_CATALOG_PATH"); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv("ARIATA_GATEWAY_ADDR"); v != "" {
		c.Gateway.Addr = v
	}
	if v := os.Getenv("ARIATA_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("ARIATA_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("ARIATA_DEDUP_BUCKET"); v != "" {
		c.DedupBucket = v
	}
	if v := os.Getenv("ARIATA_ASSET_BUCKET"); v != "" {
		c.ObjectStore.Bucket = v
	}
}

// Validate rejects configurations the process cannot start with.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.DedupBucket == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "dedup_bucket")
	}
	if c.ObjectStore.Bucket == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "object_store.bucket")
	}
	if c.Postgres.DSN == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "postgres.dsn")
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.WrapInvalid(
			fmt.Errorf("unknown log level %q", c.LogLevel),
			"Config", "SlogLevel", "parse level")
	}
}
