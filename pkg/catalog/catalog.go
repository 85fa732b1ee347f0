// Package catalog defines the item/building/recipe data that production
// graphs are built from.
//
// A catalog is plain data: items (things that flow), buildings (things that
// produce, each with a power draw), and recipes (how a building turns input
// items into output items, in amounts per minute). Catalogs are loaded from
// TOML files or taken from the builtin sample set.
//
// The catalog is opaque to the flow-graph core beyond identifier lookups;
// recipe validation is the author's responsibility.
//
// # File Format
//
//	[[items]]
//	id = "iron-ore"
//	name = "Iron Ore"
//
//	[[buildings]]
//	id = "smelter"
//	name = "Smelter"
//	power = 4.0
//
//	[[buildings]]
//	id = "miner"
//	name = "Miner Mk.1"
//	power = 5.0
//	extractor = true
//
//	[[recipes]]
//	name = "Iron Ingot"
//	building = "smelter"
//	outputs = [{ item = "iron-ingot", amount = 30.0 }]
//	inputs = [{ item = "iron-ore", amount = 30.0 }]
//
// Extractor buildings are the multi-origin-capable ones: their nodes are
// split per configured resource origin during flow-graph expansion.
package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/flowplan/flowplan/pkg/errors"
)

// Item is something that flows between buildings.
type Item struct {
	ID   string `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`
}

// Building is a production machine.
type Building struct {
	ID   string `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`

	// Power is the draw per unit in megawatts.
	Power float64 `toml:"power" json:"power"`

	// Extractor marks buildings that pull a resource out of the world and
	// therefore support multiple origins (e.g., deposits of varying purity).
	Extractor bool `toml:"extractor,omitempty" json:"extractor,omitempty"`
}

// Stack is an item with an amount per minute.
type Stack struct {
	Item   string  `toml:"item" json:"item"`
	Amount float64 `toml:"amount" json:"amount"`
}

// Recipe describes how a building converts inputs into outputs.
// All amounts are per building unit per minute.
type Recipe struct {
	Name     string  `toml:"name" json:"name"`
	Building string  `toml:"building" json:"building"`
	Outputs  []Stack `toml:"outputs" json:"outputs"`
	Inputs   []Stack `toml:"inputs,omitempty" json:"inputs,omitempty"`
}

// Catalog holds the full recipe set. Recipe index (the position in Recipes)
// is part of production-node identity, so the order of the recipes slice is
// significant and must be stable for a given catalog.
type Catalog struct {
	Items     []Item     `toml:"items" json:"items"`
	Buildings []Building `toml:"buildings" json:"buildings"`
	Recipes   []Recipe   `toml:"recipes" json:"recipes"`

	itemsByID     map[string]*Item
	buildingsByID map[string]*Building
	recipesByItem map[string][]int
}

// IndexedRecipe pairs a recipe with its catalog index.
type IndexedRecipe struct {
	Index  int
	Recipe *Recipe
}

// Load reads and indexes a catalog from a TOML file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads and indexes a catalog from TOML data.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	if err := c.Reindex(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Reindex builds the lookup maps. It must be called after constructing a
// Catalog literal or mutating the slices directly; Load and Decode call it.
// Duplicate item or building IDs are rejected; everything else is taken at
// face value.
func (c *Catalog) Reindex() error {
	c.itemsByID = make(map[string]*Item, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		if _, dup := c.itemsByID[it.ID]; dup {
			return errors.New(errors.ErrCodeInvalidCatalog, "duplicate item id %q", it.ID)
		}
		c.itemsByID[it.ID] = it
	}

	c.buildingsByID = make(map[string]*Building, len(c.Buildings))
	for i := range c.Buildings {
		b := &c.Buildings[i]
		if _, dup := c.buildingsByID[b.ID]; dup {
			return errors.New(errors.ErrCodeInvalidCatalog, "duplicate building id %q", b.ID)
		}
		c.buildingsByID[b.ID] = b
	}

	c.recipesByItem = make(map[string][]int)
	for i := range c.Recipes {
		for _, out := range c.Recipes[i].Outputs {
			c.recipesByItem[out.Item] = append(c.recipesByItem[out.Item], i)
		}
	}
	return nil
}

// Item returns the item with the given ID.
func (c *Catalog) Item(id string) (*Item, bool) {
	it, ok := c.itemsByID[id]
	return it, ok
}

// Building returns the building with the given ID.
func (c *Catalog) Building(id string) (*Building, bool) {
	b, ok := c.buildingsByID[id]
	return b, ok
}

// Recipe returns the recipe at the given catalog index.
func (c *Catalog) Recipe(index int) (*Recipe, bool) {
	if index < 0 || index >= len(c.Recipes) {
		return nil, false
	}
	return &c.Recipes[index], true
}

// RecipesFor returns all recipes producing the given item, in catalog order.
func (c *Catalog) RecipesFor(item string) []IndexedRecipe {
	indices := c.recipesByItem[item]
	result := make([]IndexedRecipe, 0, len(indices))
	for _, i := range indices {
		result = append(result, IndexedRecipe{Index: i, Recipe: &c.Recipes[i]})
	}
	return result
}

// ItemName returns the display name for an item, falling back to the ID for
// items the catalog does not know about.
func (c *Catalog) ItemName(id string) string {
	if it, ok := c.itemsByID[id]; ok && it.Name != "" {
		return it.Name
	}
	return id
}

// OutputAmount returns the per-unit per-minute amount of item produced by
// the recipe, or 0 if the recipe does not produce it.
func (r *Recipe) OutputAmount(item string) float64 {
	for _, out := range r.Outputs {
		if out.Item == item {
			return out.Amount
		}
	}
	return 0
}

// String implements fmt.Stringer for log output.
func (r *Recipe) String() string {
	return fmt.Sprintf("%s@%s", r.Name, r.Building)
}
