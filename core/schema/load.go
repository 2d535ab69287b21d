package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type schemaFile struct {
	Schema map[string]string `yaml:"schema" toml:"schema"`
}

// LoadSchema reads a column→type mapping from a YAML, JSON or TOML file.
// The mapping may sit at the top level or under a "schema" key. Column names keep
// their case.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return ParseSchema(data, filepath.Ext(path))
}

// ParseSchema decodes a schema document. ext selects the format (".toml", otherwise
// YAML, which also covers JSON).
func ParseSchema(data []byte, ext string) (Schema, error) {
	var (
		wrapped schemaFile
		flat    map[string]string
	)

	if strings.EqualFold(ext, ".toml") {
		if _, err := toml.Decode(string(data), &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode schema: %w", err)
		}
		if len(wrapped.Schema) == 0 {
			if _, err := toml.Decode(string(data), &flat); err != nil {
				return nil, fmt.Errorf("failed to decode schema: %w", err)
			}
		}
	} else {
		// A flat document decodes into the wrapper with an empty schema
		if err := yaml.Unmarshal(data, &wrapped); err != nil || len(wrapped.Schema) == 0 {
			if err := yaml.Unmarshal(data, &flat); err != nil {
				return nil, fmt.Errorf("failed to decode schema: %w", err)
			}
		}
	}

	raw := wrapped.Schema
	if len(raw) == 0 {
		raw = flat
	}

	s := make(Schema, len(raw))
	for col, name := range raw {
		s[col] = Type(name)
	}
	return s.Validate()
}
