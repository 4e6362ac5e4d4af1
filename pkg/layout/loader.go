package layout

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

const layoutSuffix = ".layout"

// Store keeps parsed layouts keyed by form id. It is safe for concurrent
// readers when treated as immutable after construction.
type Store struct {
	layouts map[string][]Node
}

// Parse decodes a JSON or YAML layout document: a list of nodes.
func Parse(data []byte, source string) ([]Node, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("layout: file %s is empty", source)
	}

	var nodes []Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		nodes = nil
		if yamlErr := yaml.Unmarshal(data, &nodes); yamlErr != nil {
			return nil, fmt.Errorf("layout: parse %s: invalid JSON or YAML", source)
		}
	}
	if err := Validate(nodes); err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, source)
	}
	return nodes, nil
}

// LoadFS walks fsys and parses every <form-id>.layout.{json,yaml,yml} file.
// When fsys is nil or holds no layout files, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{layouts: make(map[string][]Node)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		id, ok := FormID(name, layoutSuffix)
		if !ok {
			return nil
		}
		if _, exists := store.layouts[id]; exists {
			return fmt.Errorf("layout: duplicate layout for form %q (file %s)", id, name)
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("layout: read %s: %w", name, err)
		}
		nodes, err := Parse(data, name)
		if err != nil {
			return err
		}
		store.layouts[id] = nodes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Layout returns the layout registered for a form id.
func (s *Store) Layout(id string) ([]Node, bool) {
	if s == nil {
		return nil, false
	}
	nodes, ok := s.layouts[id]
	return nodes, ok
}

// Empty reports whether the store holds any layouts.
func (s *Store) Empty() bool {
	return s == nil || len(s.layouts) == 0
}

// FormID extracts the form id from names like "sf424.layout.yaml" given the
// ".layout" suffix. Only JSON and YAML extensions qualify.
func FormID(name, suffix string) (string, bool) {
	base := path.Base(name)
	ext := strings.ToLower(path.Ext(base))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return "", false
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	if !strings.HasSuffix(stem, suffix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimSuffix(stem, suffix))
	return id, id != ""
}
