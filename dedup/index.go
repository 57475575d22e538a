package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ariata-os/ariata/natsclient"
)

// Identity records what claimed a dedup key: the persisted record's id
// and when it was first seen.
type Identity struct {
	RecordID string    `json:"record_id"`
	SeenAt   time.Time `json:"seen_at"`
}

// Index maps (stream, dedup key) to the identity of the record that
// claimed it. Claim must be atomic per key: of any set of concurrent
// claims for the same key, exactly one returns true.
type Index interface {
	// Claim atomically records id under (stream, key) if the key is
	// unclaimed. Returns true when this call won the key.
	Claim(ctx context.Context, stream, key string, id Identity) (bool, error)

	// Release frees a claimed key so a later record may win it. Used
	// when persistence fails after a successful claim.
	Release(ctx context.Context, stream, key string) error
}

// MemoryIndex is a mutex-guarded in-process index for tests and
// single-node deployments.
type MemoryIndex struct {
	mu      sync.Mutex
	entries map[string]Identity
}

// NewMemoryIndex returns an empty in-process index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Identity)}
}

// Claim implements Index.
func (m *MemoryIndex) Claim(_ context.Context, stream, key string, id Identity) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := stream + "\x00" + key
	if _, exists := m.entries[k]; exists {
		return false, nil
	}
	m.entries[k] = id
	return true, nil
}

// Release implements Index.
func (m *MemoryIndex) Release(_ context.Context, stream, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, stream+"\x00"+key)
	return nil
}

// Len returns the number of claimed keys.
func (m *MemoryIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// KVIndex is the production index backed by a JetStream KV bucket. The
// server-side Create operation provides the per-key atomicity.
type KVIndex struct {
	kv *natsclient.KVStore
}

// NewKVIndex wraps a KV bucket as a dedup index.
func NewKVIndex(kv *natsclient.KVStore) *KVIndex {
	return &KVIndex{kv: kv}
}

// Claim implements Index via atomic KV Create.
func (x *KVIndex) Claim(ctx context.Context, stream, key string, id Identity) (bool, error) {
	value, err := json.Marshal(id)
	if err != nil {
		return false, err
	}
	_, err = x.kv.Create(ctx, kvKey(stream, key), value)
	if err != nil {
		if errors.Is(err, natsclient.ErrKeyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Release implements Index.
func (x *KVIndex) Release(ctx context.Context, stream, key string) error {
	return x.kv.Delete(ctx, kvKey(stream, key))
}

// kvKey builds a KV-safe key. Dedup keys are hex digests already; the
// stream qualifier needs its slash replaced since NATS reserves it.
func kvKey(stream, key string) string {
	return strings.ReplaceAll(stream, "/", "_") + "." + key
}
