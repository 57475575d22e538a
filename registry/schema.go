package registry

import (
	"fmt"
	"slices"
)

// SemanticType is the declared type of a stream column.
type SemanticType string

// Column semantic types. These drive validation and relational storage;
// the blob side is driven by Column.ContentType.
const (
	TypeString    SemanticType = "string"
	TypeText      SemanticType = "text"
	TypeInteger   SemanticType = "integer"
	TypeBigint    SemanticType = "bigint"
	TypeFloat     SemanticType = "float"
	TypeBoolean   SemanticType = "boolean"
	TypeTimestamp SemanticType = "timestamp"
	TypeJSON      SemanticType = "json"
)

// DedupStrategy selects how the deduplicator derives a key for a stream.
type DedupStrategy string

const (
	// DedupNone never marks a record as duplicate; every push is
	// authoritative.
	DedupNone DedupStrategy = "none"
	// DedupSingle allows at most one record per exact tuple of all
	// required fields.
	DedupSingle DedupStrategy = "single"
	// DedupUniqueKey keys on the named fields (e.g. an external message
	// id); a repeated key is an upstream contract violation.
	DedupUniqueKey DedupStrategy = "unique_key"
	// DedupContentHash keys on a hash of the full normalized record, so
	// an in-place revision upstream becomes a new version here.
	DedupContentHash DedupStrategy = "content_hash"
)

// StorageStrategy selects how a stream's fields are split across stores.
type StorageStrategy string

const (
	// StorageRelational keeps every column in the relational store.
	StorageRelational StorageStrategy = "relational_only"
	// StorageHybrid moves the configured blob fields to object storage
	// and keeps a path reference in the relational row.
	StorageHybrid StorageStrategy = "hybrid"
)

// DefaultPathTemplate is the blob path layout used when a hybrid stream
// does not override it.
const DefaultPathTemplate = "assets/{stream}/{year}/{month}/{day}/{field}_{id}.{ext}"

// Column describes one field of a stream schema.
type Column struct {
	Name     string       `yaml:"name"`
	Type     SemanticType `yaml:"type"`
	Required bool         `yaml:"required"`

	// MaxLength bounds string/text columns; zero means unbounded.
	MaxLength int `yaml:"max_length,omitempty"`

	// Min/Max declare an inclusive range for numeric columns.
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`

	// Enum restricts a string column to a fixed set of values.
	Enum []string `yaml:"enum,omitempty"`

	// Default fills the column when the source omits it.
	Default any `yaml:"default,omitempty"`

	// ContentType hints the blob serialization for fields routed to
	// object storage (e.g. "audio/wav", "application/json").
	ContentType string `yaml:"content_type,omitempty"`
}

// DedupPolicy configures deduplication for a stream.
type DedupPolicy struct {
	Strategy DedupStrategy `yaml:"strategy"`
	// Fields names the unique-key columns; only used by unique_key.
	Fields []string `yaml:"fields,omitempty"`
}

// StoragePolicy configures the relational/blob split for a stream.
type StoragePolicy struct {
	Strategy StorageStrategy `yaml:"strategy"`
	// BlobFields names the columns routed to object storage; only used
	// by hybrid.
	BlobFields []string `yaml:"blob_fields,omitempty"`
	// PathTemplate overrides DefaultPathTemplate for blob paths.
	PathTemplate string `yaml:"path_template,omitempty"`
}

// StreamSchema is the immutable declarative description of one stream.
// Instances are created by catalog loading and never mutated afterwards.
type StreamSchema struct {
	Name    string        `yaml:"name"`
	Source  string        `yaml:"-"` // filled from the owning source entry
	Table   string        `yaml:"table,omitempty"`
	Columns []Column      `yaml:"columns"`
	Dedup   DedupPolicy   `yaml:"dedup"`
	Storage StoragePolicy `yaml:"storage"`
}

// Column returns the named column definition, or nil if undeclared.
func (s *StreamSchema) Column(name string) *Column {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the schema declares the named column.
func (s *StreamSchema) HasColumn(name string) bool {
	return s.Column(name) != nil
}

// IdentityFields returns the names of all required columns, in declaration
// order. The single dedup strategy keys on this tuple.
func (s *StreamSchema) IdentityFields() []string {
	var fields []string
	for _, c := range s.Columns {
		if c.Required {
			fields = append(fields, c.Name)
		}
	}
	return fields
}

// IsBlobField reports whether the named column is routed to object storage.
func (s *StreamSchema) IsBlobField(name string) bool {
	return s.Storage.Strategy == StorageHybrid && slices.Contains(s.Storage.BlobFields, name)
}

// ReferenceColumn returns the relational column that holds the blob path
// for a hybrid field.
func (s *StreamSchema) ReferenceColumn(field string) string {
	return field + "_path"
}

// PathTemplate returns the blob path template for the stream.
func (s *StreamSchema) PathTemplate() string {
	if s.Storage.PathTemplate != "" {
		return s.Storage.PathTemplate
	}
	return DefaultPathTemplate
}

// QualifiedName returns "source/stream" for logs and dedup index keys.
func (s *StreamSchema) QualifiedName() string {
	return s.Source + "/" + s.Name
}

var validTypes = []SemanticType{
	TypeString, TypeText, TypeInteger, TypeBigint,
	TypeFloat, TypeBoolean, TypeTimestamp, TypeJSON,
}

// Validate checks the schema's internal invariants: column types are
// known, dedup key fields and blob fields reference declared columns, and
// the storage policy is coherent. Called once at catalog load; a failure
// here is a deployment error.
func (s *StreamSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("stream missing name")
	}
	if s.Source == "" {
		return fmt.Errorf("stream %q missing source", s.Name)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("stream %q declares no columns", s.Name)
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("stream %q has a column without a name", s.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("stream %q declares column %q twice", s.Name, c.Name)
		}
		seen[c.Name] = true
		if !slices.Contains(validTypes, c.Type) {
			return fmt.Errorf("stream %q column %q has unknown type %q", s.Name, c.Name, c.Type)
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return fmt.Errorf("stream %q column %q has min > max", s.Name, c.Name)
		}
	}

	switch s.Dedup.Strategy {
	case DedupNone, DedupSingle, DedupContentHash:
		if len(s.Dedup.Fields) > 0 {
			return fmt.Errorf("stream %q dedup strategy %q does not take fields", s.Name, s.Dedup.Strategy)
		}
	case DedupUniqueKey:
		if len(s.Dedup.Fields) == 0 {
			return fmt.Errorf("stream %q unique_key dedup requires fields", s.Name)
		}
		for _, f := range s.Dedup.Fields {
			if !seen[f] {
				return fmt.Errorf("stream %q dedup field %q is not a declared column", s.Name, f)
			}
		}
	default:
		return fmt.Errorf("stream %q has unknown dedup strategy %q", s.Name, s.Dedup.Strategy)
	}

	switch s.Storage.Strategy {
	case StorageRelational:
		if len(s.Storage.BlobFields) > 0 {
			return fmt.Errorf("stream %q relational_only storage does not take blob fields", s.Name)
		}
		if s.Storage.PathTemplate != "" {
			return fmt.Errorf("stream %q relational_only storage does not take a path template", s.Name)
		}
	case StorageHybrid:
		if len(s.Storage.BlobFields) == 0 {
			return fmt.Errorf("stream %q hybrid storage requires blob fields", s.Name)
		}
		for _, f := range s.Storage.BlobFields {
			if !seen[f] {
				return fmt.Errorf("stream %q blob field %q is not a declared column", s.Name, f)
			}
			if ref := s.ReferenceColumn(f); seen[ref] {
				return fmt.Errorf("stream %q reference column %q collides with a declared column", s.Name, ref)
			}
		}
	default:
		return fmt.Errorf("stream %q has unknown storage strategy %q", s.Name, s.Storage.Strategy)
	}

	return nil
}
