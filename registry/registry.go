package registry

import (
	"fmt"
	"sort"

	"github.com/ariata-os/ariata/errors"
)

// Registry maps source name → stream name → StreamSchema. Built once by
// catalog loading; read-only afterwards, so concurrent Lookup calls are
// lock-free by construction.
type Registry struct {
	sources map[string]*Source
}

// Source describes one external provider and its streams.
type Source struct {
	Name string `yaml:"-"`
	// Platform distinguishes pull-based cloud APIs from push-based
	// device agents ("cloud" or "device").
	Platform    string                   `yaml:"platform"`
	Description string                   `yaml:"description,omitempty"`
	Streams     map[string]*StreamSchema `yaml:"streams"`
}

// Lookup returns the schema for a source/stream pair. A miss is a
// misconfiguration, fatal to the caller's batch.
func (r *Registry) Lookup(source, stream string) (*StreamSchema, error) {
	src, ok := r.sources[source]
	if !ok {
		return nil, fmt.Errorf("source %q: %w", source, errors.ErrUnknownStream)
	}
	schema, ok := src.Streams[stream]
	if !ok {
		return nil, fmt.Errorf("source %q stream %q: %w", source, stream, errors.ErrUnknownStream)
	}
	return schema, nil
}

// Sources returns the registered source names in sorted order.
func (r *Registry) Sources() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Streams returns every stream schema in the registry, sorted by
// qualified name. Used at startup to build one processor per stream.
func (r *Registry) Streams() []*StreamSchema {
	var schemas []*StreamSchema
	for _, src := range r.sources {
		for _, schema := range src.Streams {
			schemas = append(schemas, schema)
		}
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].QualifiedName() < schemas[j].QualifiedName()
	})
	return schemas
}
