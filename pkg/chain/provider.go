package chain

import (
	"github.com/flowplan/flowplan/pkg/catalog"
	"github.com/flowplan/flowplan/pkg/errors"
)

// Build constructs the base production graph for producing item at the given
// per-minute rate. A non-positive rate is coerced to 1, representing an empty
// or placeholder request rather than an error.
//
// Recipe selection is deterministic: the first catalog recipe producing an
// item wins. Items with no producing recipe become dangling edge endpoints,
// which downstream edge distribution drops silently; only an unknown target
// item is an error.
func Build(c *catalog.Catalog, item string, rate float64) (*Graph, error) {
	if rate <= 0 {
		rate = 1
	}
	if len(c.RecipesFor(item)) == 0 {
		return nil, errors.New(errors.ErrCodeRecipeNotFound, "no recipe produces %q", item)
	}

	b := &builder{
		catalog: c,
		index:   make(map[Key]int),
		edges:   make(map[Edge]int),
		onStack: make(map[string]bool),
	}
	b.produce(item, rate)

	return &Graph{Nodes: b.nodes, Edges: b.edgeList}, nil
}

// builder accumulates nodes and edges during the demand walk.
type builder struct {
	catalog  *catalog.Catalog
	nodes    []Node
	index    map[Key]int  // node key -> position in nodes
	edgeList []Edge
	edges    map[Edge]int // amount-less edge identity -> position in edgeList
	onStack  map[string]bool
}

// produce adds demand for rate units/min of item, creating or growing the
// producing node and recursing into its inputs.
func (b *builder) produce(item string, rate float64) {
	recipes := b.catalog.RecipesFor(item)
	if len(recipes) == 0 {
		return
	}
	r := recipes[0]

	perUnit := r.Recipe.OutputAmount(item)
	if perUnit <= 0 {
		return
	}
	units := rate / perUnit

	key := Key{Building: r.Recipe.Building, RecipeIndex: r.Index, Item: item}
	if i, seen := b.index[key]; seen {
		b.nodes[i].Units += units
	} else {
		var power float64
		var extractor bool
		if bld, ok := b.catalog.Building(r.Recipe.Building); ok {
			power = bld.Power
			extractor = bld.Extractor
		}
		b.index[key] = len(b.nodes)
		b.nodes = append(b.nodes, Node{
			Building:    r.Recipe.Building,
			RecipeIndex: r.Index,
			Item:        item,
			Amount:      perUnit,
			Units:       units,
			Power:       power,
			Extractor:   extractor,
		})
	}

	// Guard against recipe cycles: the catalog is assumed acyclic, but a
	// malformed one must not hang the walk.
	if b.onStack[item] {
		return
	}
	b.onStack[item] = true
	defer delete(b.onStack, item)

	for _, in := range r.Recipe.Inputs {
		inRate := units * in.Amount
		b.addEdge(b.producerKey(in.Item), key, in.Item, inRate)
		b.produce(in.Item, inRate)
	}
}

// producerKey returns the key of the node that produces item under the same
// first-recipe selection rule used by produce. Items without a producer get
// a key that matches no node; the resulting dangling edge is dropped during
// distribution.
func (b *builder) producerKey(item string) Key {
	recipes := b.catalog.RecipesFor(item)
	if len(recipes) == 0 {
		return Key{Item: item, RecipeIndex: -1}
	}
	return Key{Building: recipes[0].Recipe.Building, RecipeIndex: recipes[0].Index, Item: item}
}

// addEdge records flow from one node to another, merging repeated visits of
// the same (from, to, item) triple by accumulating the amount.
func (b *builder) addEdge(from, to Key, item string, amount float64) {
	id := Edge{From: from, To: to, Item: item}
	if i, seen := b.edges[id]; seen {
		b.edgeList[i].Amount += amount
		return
	}
	b.edges[id] = len(b.edgeList)
	id.Amount = amount
	b.edgeList = append(b.edgeList, id)
}
