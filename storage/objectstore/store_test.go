package objectstore

import (
	"crypto/sha256"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
)

func TestDigestOf_MatchesBucketFormat(t *testing.T) {
	// sha256("") = e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855
	assert.Equal(t, "SHA-256=47DEQpj8HBSa-_TImW-5JCeuQeRkm5NMpJWZG3hSuFU=", digestOf(nil))

	// Replay detection compares against ObjectInfo.Digest, so the local
	// rendering must match what JetStream itself would store.
	for _, content := range [][]byte{nil, []byte("hello"), []byte(`{"blocks":[1,2,3]}`)} {
		h := sha256.New()
		h.Write(content)
		assert.Equal(t, jetstream.GetObjectDigestValue(h), digestOf(content))
	}

	a := digestOf([]byte("hello"))
	b := digestOf([]byte("hello"))
	c := digestOf([]byte("hello, edited"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "ARIATA_ASSETS", cfg.Bucket)
	assert.NotZero(t, cfg.Timeout)
}
