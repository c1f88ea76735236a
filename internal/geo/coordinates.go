// Package geo resolves country names to map coordinates.
package geo

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"go-accident-dashboard/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var defaultCountries []byte

// Lookup resolves a country name to a coordinate.
type Lookup interface {
	Lookup(country string) (model.Coordinate, bool)
}

// Table is a Lookup backed by a map keyed by exact country name.
type Table map[string]model.Coordinate

// Lookup implements Lookup. Surrounding whitespace in the name is ignored.
func (t Table) Lookup(country string) (model.Coordinate, bool) {
	c, ok := t[strings.TrimSpace(country)]
	return c, ok
}

// Countries returns the mapped country names, sorted.
func (t Table) Countries() []string {
	return slices.Sorted(maps.Keys(t))
}

// Merge returns a new table holding t overlaid with other.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	maps.Copy(out, t)
	maps.Copy(out, other)
	return out
}

// Parse decodes a YAML document mapping country names to {lat, lng}.
func Parse(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse coordinate table: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	for name, c := range t {
		if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
			return nil, fmt.Errorf("parse coordinate table: %q out of range (%v, %v)", name, c.Lat, c.Lng)
		}
	}
	return t, nil
}

// Default returns the built-in coordinate table.
func Default() Table {
	t, err := Parse(defaultCountries)
	if err != nil {
		// The embedded table is part of the build.
		panic(err)
	}
	return t
}

// LoadFile reads a YAML coordinate table from path and overlays it on the
// built-in table. An empty path returns the built-in table.
func LoadFile(path string) (Table, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coordinate table: %w", err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return base.Merge(extra), nil
}
