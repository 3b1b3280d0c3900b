// Package item defines the catalog of usable pet items and the use-item action.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/petengine/internal/game/personality"
)

// Kind classifies an item.
type Kind string

const (
	KindFood     Kind = "food"
	KindToy      Kind = "toy"
	KindMedicine Kind = "medicine"
	KindTreasure Kind = "treasure"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFood, KindToy, KindMedicine, KindTreasure:
		return true
	}
	return false
}

// Effects are applied to a pet when an item is used on it.
type Effects struct {
	Hunger    int            `yaml:"hunger"`
	Happiness int            `yaml:"happiness"`
	HP        int            `yaml:"hp"`
	Traits    map[string]int `yaml:"traits"`
	Cures     []string       `yaml:"cures"`
}

// Empty reports whether the effects change nothing.
func (e Effects) Empty() bool {
	return e.Hunger == 0 && e.Happiness == 0 && e.HP == 0 && len(e.Traits) == 0 && len(e.Cures) == 0
}

// Def is the static definition of an item loaded from YAML.
type Def struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Kind        Kind    `yaml:"kind"`
	Value       int     `yaml:"value"`
	Effects     Effects `yaml:"effects"`
}

// Usable reports whether the item can be used on a pet.
func (d *Def) Usable() bool {
	return d.Kind != KindTreasure && !d.Effects.Empty()
}

// Validate checks that the Def satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !d.Kind.Valid() {
		errs = append(errs, fmt.Errorf("kind must be one of food, toy, medicine, treasure; got %q", d.Kind))
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("value must be >= 0"))
	}
	for name := range d.Effects.Traits {
		if _, err := personality.ParseTrait(name); err != nil {
			errs = append(errs, fmt.Errorf("effects.traits: unknown trait %q", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Catalog holds item definitions indexed by ID.
type Catalog struct {
	items map[string]*Def
}

// NewCatalog validates defs and indexes them.
//
// Postcondition: returns an error if any def is invalid or an ID repeats.
func NewCatalog(defs ...*Def) (*Catalog, error) {
	c := &Catalog{items: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.items[d.ID]; dup {
			return nil, fmt.Errorf("item %q defined twice", d.ID)
		}
		c.items[d.ID] = d
	}
	return c, nil
}

// Get returns the Def for id and whether it was found.
func (c *Catalog) Get(id string) (*Def, bool) {
	d, ok := c.items[id]
	return d, ok
}

// All returns every Def ordered by ID.
func (c *Catalog) All() []*Def {
	out := make([]*Def, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Missing returns the ids in ids that are not in the catalog, in input order.
func (c *Catalog) Missing(ids ...string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := c.items[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

type itemFile struct {
	Items []*Def `yaml:"items"`
}

// LoadCatalog reads all *.yaml and *.yml files from dir. Each file holds an
// `items:` list.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns a Catalog of all valid items or the first error.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading item dir %q: %w", dir, err)
	}
	var all []*Def
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %q: %w", path, err)
		}
		var file itemFile
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		err = dec.Decode(&file)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		all = append(all, file.Items...)
	}
	return NewCatalog(all...)
}
