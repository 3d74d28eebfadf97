// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads the table of known radio manuals.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fieldguide/pkg/types"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is an ordered set of manuals keyed by radio id.
type Catalog struct {
	manuals []types.Manual
	byID    map[string]int
}

type catalogFile struct {
	Manuals []types.Manual `yaml:"manuals"`
}

// Parse decodes a catalog document. Every manual needs an id and a
// filename, and ids must be unique.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(f.Manuals))}
	for i, m := range f.Manuals {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i+1)
		}
		if m.Filename == "" {
			return nil, fmt.Errorf("catalog entry %s: missing filename", m.ID)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("catalog entry %s: duplicate id", m.ID)
		}
		c.byID[m.ID] = len(c.manuals)
		c.manuals = append(c.manuals, m)
	}
	return c, nil
}

// Load reads a catalog file. An empty path selects the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Lookup returns the manual for id.
func (c *Catalog) Lookup(id string) (types.Manual, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.Manual{}, false
	}
	return c.manuals[i], true
}

// ByFilename returns the manual whose PDF file name is name.
func (c *Catalog) ByFilename(name string) (types.Manual, bool) {
	for _, m := range c.manuals {
		if m.Filename == name {
			return m, true
		}
	}
	return types.Manual{}, false
}

// Manuals returns the manuals in catalog order.
func (c *Catalog) Manuals() []types.Manual {
	out := make([]types.Manual, len(c.manuals))
	copy(out, c.manuals)
	return out
}

// IDs returns all radio ids, sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.manuals))
	for _, m := range c.manuals {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of manuals.
func (c *Catalog) Len() int { return len(c.manuals) }
