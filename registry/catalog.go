package registry

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ariata-os/ariata/errors"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// catalogFile is the on-disk catalog layout.
type catalogFile struct {
	Sources map[string]*Source `yaml:"sources"`
}

// Load parses a YAML catalog and builds the immutable registry. Every
// schema is validated; any invariant violation fails the whole load since
// a partial registry would accept records it cannot route.
func Load(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapFatal(err, "Registry", "Load", "catalog parse")
	}
	if len(file.Sources) == 0 {
		return nil, errors.WrapFatal(
			fmt.Errorf("catalog declares no sources"),
			"Registry", "Load", "catalog validation")
	}

	for sourceName, src := range file.Sources {
		src.Name = sourceName
		if len(src.Streams) == 0 {
			return nil, errors.WrapFatal(
				fmt.Errorf("source %q declares no streams", sourceName),
				"Registry", "Load", "catalog validation")
		}
		for streamName, schema := range src.Streams {
			schema.Name = streamName
			schema.Source = sourceName
			if schema.Table == "" {
				schema.Table = fmt.Sprintf("stream_%s_%s", sourceName, streamName)
			}
			if err := schema.Validate(); err != nil {
				return nil, errors.WrapFatal(err, "Registry", "Load", "schema validation")
			}
		}
	}

	return &Registry{sources: file.Sources}, nil
}

// LoadFile loads a catalog from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Registry", "LoadFile", "catalog read")
	}
	return Load(data)
}

// Default loads the catalog embedded in the binary.
func Default() (*Registry, error) {
	return Load(defaultCatalog)
}
