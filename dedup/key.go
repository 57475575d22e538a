package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/record"
	"github.com/ariata-os/ariata/registry"
)

// serializationVersion tags the canonical byte layout. Bump only with a
// migration plan for existing index entries.
const serializationVersion = "v1"

const unitSep = "\x1f"

// Key derives the dedup key for rec under the schema's strategy. The
// second return is false for the none strategy (no key, never a
// duplicate). A unique_key record missing one of its key fields yields an
// invalid-class error: the upstream source broke its id contract and the
// record must be rejected, not silently dropped.
func Key(schema *registry.StreamSchema, rec *record.Normalized) (string, bool, error) {
	switch schema.Dedup.Strategy {
	case registry.DedupNone:
		return "", false, nil

	case registry.DedupSingle:
		parts := []string{serializationVersion, "ts=" + rec.Timestamp.UTC().Format(time.RFC3339Nano)}
		for _, field := range schema.IdentityFields() {
			v, _ := rec.Field(field)
			parts = append(parts, field+"="+encodeValue(v))
		}
		return digest(parts), true, nil

	case registry.DedupUniqueKey:
		parts := []string{serializationVersion}
		for _, field := range schema.Dedup.Fields {
			v, ok := rec.Field(field)
			if !ok {
				return "", false, errors.WrapInvalid(
					fmt.Errorf("unique key field %q missing from record", field),
					"Deduplicator", "Key", "key derivation")
			}
			parts = append(parts, field+"="+encodeValue(v))
		}
		return digest(parts), true, nil

	case registry.DedupContentHash:
		return digest(canonicalParts(schema, rec)), true, nil

	default:
		// Unreachable for registry-validated schemas.
		return "", false, errors.WrapFatal(
			fmt.Errorf("unknown dedup strategy %q", schema.Dedup.Strategy),
			"Deduplicator", "Key", "strategy dispatch")
	}
}

// canonicalParts renders the version-1 canonical serialization described
// in the package documentation.
func canonicalParts(schema *registry.StreamSchema, rec *record.Normalized) []string {
	parts := []string{serializationVersion, schema.QualifiedName()}
	for _, col := range schema.Columns {
		v, ok := rec.Field(col.Name)
		if !ok {
			continue
		}
		parts = append(parts, col.Name+"="+encodeValue(v))
	}
	if len(rec.RawData) > 0 {
		parts = append(parts, "raw_data="+encodeValue(rec.RawData))
	}
	return parts
}

// encodeValue renders one value deterministically. encoding/json sorts
// map keys, which is what makes nested objects stable.
func encodeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case []byte:
		sum := sha256.Sum256(t)
		return "bytes:" + hex.EncodeToString(sum[:])
	default:
		b, err := json.Marshal(v)
		if err != nil {
			// Unmarshalable values (channels, funcs) cannot come from
			// decoded payloads; fall back to the fmt rendering.
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func digest(parts []string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, unitSep)))
	return hex.EncodeToString(sum[:])
}
