package objectstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ariata-os/ariata/errors"
)

// Config holds blob store settings.
type Config struct {
	// Bucket is the JetStream object store bucket name.
	Bucket string `yaml:"bucket"`

	// Timeout bounds each store operation.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the default blob store settings.
func DefaultConfig() Config {
	return Config{
		Bucket:  "ARIATA_ASSETS",
		Timeout: 30 * time.Second,
	}
}

// Store is a JetStream-backed BlobStore.
type Store struct {
	bucket  jetstream.ObjectStore
	timeout time.Duration
	logger  *slog.Logger
}

// New wraps an open object store bucket.
func New(bucket jetstream.ObjectStore, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Store{
		bucket:  bucket,
		timeout: timeout,
		logger:  logger.With("component", "objectstore"),
	}
}

// Put writes content at path. An occupied path with matching content is
// a replayed write and succeeds; an occupied path with different
// content is a collision, which means id generation broke and the
// pipeline must not overwrite.
func (s *Store) Put(ctx context.Context, path string, content []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	info, err := s.bucket.GetInfo(ctx, path)
	switch {
	case err == nil:
		if info.Digest == digestOf(content) {
			s.logger.Debug("blob replay, path already written", "path", path)
			return nil
		}
		return errors.WrapFatal(
			fmt.Errorf("%w: path %q already holds different content", errors.ErrPathCollision, path),
			"ObjectStore", "Put", "collision check")
	case stderrors.Is(err, jetstream.ErrObjectNotFound):
		// Free path, proceed.
	default:
		return &errors.StorageWriteError{Store: "objectstore", Op: "stat " + path, Err: err}
	}

	meta := jetstream.ObjectMeta{Name: path}
	if contentType != "" {
		meta.Headers = nats.Header{"Content-Type": []string{contentType}}
	}
	if _, err := s.bucket.Put(ctx, meta, bytes.NewReader(content)); err != nil {
		return &errors.StorageWriteError{Store: "objectstore", Op: "put " + path, Err: err}
	}
	return nil
}

// Get reads the content at path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.bucket.GetBytes(ctx, path)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, errors.WrapInvalid(err, "ObjectStore", "Get", "path "+path)
		}
		return nil, errors.WrapTransient(err, "ObjectStore", "Get", "path "+path)
	}
	return data, nil
}

// digestOf renders content in the bucket's digest format so replays can
// be detected from object metadata without fetching the body. JetStream
// stores digests as padded url-safe base64.
func digestOf(content []byte) string {
	sum := sha256.Sum256(content)
	return "SHA-256=" + base64.URLEncoding.EncodeToString(sum[:])
}
