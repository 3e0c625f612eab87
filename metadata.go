package blogfs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	yaml "gopkg.in/yaml.v2"
)

// Metadata document names, in lookup order.
var metadataFiles = []string{"overview.json", "overview.yaml", "overview.yml"}

// readMetadata loads the first metadata document present in dir.
func readMetadata(dir string) (Metadata, error) {
	for _, name := range metadataFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return decodeMetadata(name, data)
	}
	return nil, fmt.Errorf("%s: %w", metadataFiles[0], ErrNotFound)
}

func decodeMetadata(name string, data []byte) (Metadata, error) {
	var meta Metadata
	switch filepath.Ext(name) {
	case ".json":
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrMalformedMetadata, err)
		}
	default:
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", name, ErrMalformedMetadata, err)
		}
		if raw != nil {
			meta = make(Metadata, len(raw))
			for k, v := range raw {
				meta[k] = normalizeYAML(v)
			}
		}
	}
	if meta == nil {
		return nil, fmt.Errorf("%s: %w: document is empty", name, ErrMalformedMetadata)
	}
	return meta, nil
}

// normalizeYAML rewrites the map[interface{}]interface{} values yaml.v2
// produces for nested mappings into string-keyed maps that encode as JSON.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[yamlKey(k)] = normalizeYAML(val)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

func yamlKey(k interface{}) string {
	switch t := k.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
