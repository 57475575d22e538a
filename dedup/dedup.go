package dedup

import (
	"context"
	"time"

	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// Deduplicator answers the duplicate question for one index. Safe for
// concurrent use across all streams' processors.
type Deduplicator struct {
	index Index
}

// New returns a Deduplicator over the given index.
func New(index Index) *Deduplicator {
	return &Deduplicator{index: index}
}

// Claim is the outcome of a dedup check. When persistence of the claimed
// record fails, Release returns the key so a retry can win it again.
type Claim struct {
	stream  string
	key     string
	claimed bool
	index   Index
}

// Release frees the claim. Safe to call on unclaimed (none-strategy)
// results.
func (c *Claim) Release(ctx context.Context) error {
	if !c.claimed || c.key == "" {
		return nil
	}
	c.claimed = false
	return c.index.Release(ctx, c.stream, c.key)
}

// IsDuplicate derives rec's dedup key and atomically claims it. It
// returns duplicate=true when another record already holds the key. For
// the none strategy it returns duplicate=false with a no-op claim. Key
// derivation errors (unique-key contract violations) propagate to the
// caller for rejection.
func (d *Deduplicator) IsDuplicate(ctx context.Context, schema *registry.StreamSchema, rec *record.Normalized) (bool, *Claim, error) {
	key, keyed, err := Key(schema, rec)
	if err != nil {
		return false, nil, err
	}
	if !keyed {
		return false, &Claim{}, nil
	}

	stream := schema.QualifiedName()
	won, err := d.index.Claim(ctx, stream, key, Identity{
		RecordID: rec.ID,
		SeenAt:   time.Now().UTC(),
	})
	if err != nil {
		return false, nil, err
	}
	if !won {
		return true, &Claim{}, nil
	}
	return false, &Claim{stream: stream, key: key, claimed: true, index: d.index}, nil
}
