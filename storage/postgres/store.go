package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariata-os/ariata/errors"
)

// Config holds connection settings for the relational store.
type Config struct {
	// DSN is a libpq-style connection string or URL.
	DSN string `yaml:"dsn"`

	// MaxConns caps the pool size. Zero uses the pgxpool default.
	MaxConns int32 `yaml:"max_conns"`

	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DefaultConfig returns settings suitable for local development.
func DefaultConfig() Config {
	return Config{
		DSN:            "postgres://localhost:5432/ariata",
		MaxConns:       8,
		ConnectTimeout: 10 * time.Second,
	}
}

// Store is a pgxpool-backed RelationalStore.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Postgres", "Connect", "dsn is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.WrapFatal(err, "Postgres", "Connect", "parse dsn")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, errors.WrapTransient(err, "Postgres", "Connect", "create pool")
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, errors.WrapTransient(err, "Postgres", "Connect", "ping")
	}

	logger.Info("connected to postgres", "max_conns", poolCfg.MaxConns)
	return &Store{pool: pool, logger: logger.With("component", "postgres")}, nil
}

// InsertRow writes one row. Structured values (maps, slices) are
// serialized to JSON so jsonb columns receive documents rather than
// Go-native encodings.
func (s *Store) InsertRow(ctx context.Context, table string, columns map[string]any) error {
	if len(columns) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("table %q: no columns to insert", table),
			"Postgres", "InsertRow", "empty row")
	}

	sql, args, err := insertSQL(table, columns)
	if err != nil {
		return errors.WrapInvalid(err, "Postgres", "InsertRow", "build statement")
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return &errors.StorageWriteError{Store: "postgres", Op: "insert " + table, Err: err}
	}
	return nil
}

// Ping reports connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errors.WrapTransient(err, "Postgres", "Ping", "ping failed")
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// insertSQL builds a parameterized INSERT with columns in sorted order
// so the statement text is stable for identical column sets, which
// keeps the server-side prepared statement cache effective.
func insertSQL(table string, columns map[string]any) (string, []any, error) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgx.Identifier{table}.Sanitize())
	b.WriteString(" (")

	args := make([]any, 0, len(names))
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{name}.Sanitize())

		arg, err := encodeValue(columns[name])
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
	}

	b.WriteString(") VALUES (")
	for i := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$")
		b.WriteString(strconv.Itoa(i + 1))
	}
	b.WriteString(")")

	return b.String(), args, nil
}

// encodeValue maps a column value to a pgx-friendly argument. Maps and
// slices become JSON text for jsonb columns; scalars pass through.
func encodeValue(value any) (any, error) {
	switch value.(type) {
	case nil, string, bool,
		int, int32, int64, float32, float64,
		[]byte, time.Time:
		return value, nil
	case map[string]any, []any, []string:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		// Uncommon scalar types (e.g. json.Number) round-trip through JSON.
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}
