// Package health tracks bounded health points and the set of active illnesses
// of each pet, including paid treatment.
package health

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity grades how serious an illness is.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Valid reports whether s is a recognised severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// IllnessDef is the static definition of an illness, loaded from YAML.
type IllnessDef struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Severity      Severity `yaml:"severity"`
	TreatmentCost int64    `yaml:"treatment_cost"`
	// HPDamage is subtracted from health points when the illness is contracted.
	HPDamage int `yaml:"hp_damage"`
}

// Validate checks the definition's invariants.
func (d *IllnessDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("illness: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("illness %q: name must not be empty", d.ID)
	}
	if !d.Severity.Valid() {
		return fmt.Errorf("illness %q: severity must be one of [mild, moderate, severe], got %q", d.ID, d.Severity)
	}
	if d.TreatmentCost < 0 {
		return fmt.Errorf("illness %q: treatment_cost must be >= 0, got %d", d.ID, d.TreatmentCost)
	}
	if d.HPDamage < 0 {
		return fmt.Errorf("illness %q: hp_damage must be >= 0, got %d", d.ID, d.HPDamage)
	}
	return nil
}

// Catalog holds all known illness definitions keyed by ID.
type Catalog struct {
	defs map[string]*IllnessDef
}

// NewCatalog creates a catalog from defs.
//
// Postcondition: returns an error if any definition is invalid or duplicated.
func NewCatalog(defs ...*IllnessDef) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*IllnessDef, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.defs[d.ID]; dup {
			return nil, fmt.Errorf("illness %q defined twice", d.ID)
		}
		c.defs[d.ID] = d
	}
	return c, nil
}

// Get returns the definition for id, or (nil, false) if not found.
func (c *Catalog) Get(id string) (*IllnessDef, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// All returns every definition sorted by ID.
func (c *Catalog) All() []*IllnessDef {
	out := make([]*IllnessDef, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadCatalog reads every *.yaml file in dir, each holding one IllnessDef.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a populated Catalog or the first parse/validation error.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading illness dir %q: %w", dir, err)
	}
	var defs []*IllnessDef
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def IllnessDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		defs = append(defs, &def)
	}
	return NewCatalog(defs...)
}
