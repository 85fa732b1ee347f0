// Package chain builds base production graphs from a recipe catalog.
//
// A base graph answers the question "which buildings, running which recipes,
// produce the target item at the target rate, and how much material moves
// between them". It is the input to flow-graph expansion (pkg/flow), which
// splits extraction nodes per resource origin and rebalances edges.
//
// One node exists per (building, recipe index, output item) combination;
// repeated demand for the same combination is merged into a single node by
// accumulating its required unit count.
package chain

import "fmt"

// Key identifies a production node. It must be unique among the nodes of a
// base graph; both expansion and edge distribution join on it.
type Key struct {
	Building    string // building identifier
	RecipeIndex int    // index of the recipe in the catalog
	Item        string // output item identifier
}

// String renders the key in "building/index/item" form, used in logs and as
// a stable identifier for layout and rendering.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Building, k.RecipeIndex, k.Item)
}

// Node is one building/recipe instance in the base graph.
type Node struct {
	Building    string  `json:"building"`     // building identifier
	RecipeIndex int     `json:"recipe_index"` // recipe index within the catalog
	Item        string  `json:"item"`         // output item identifier
	Amount      float64 `json:"amount"`       // output per unit per minute
	Units       float64 `json:"units"`        // required unit count (fractional)
	Power       float64 `json:"power"`        // power draw per unit in MW

	// Extractor marks nodes whose building supports multiple resource
	// origins; only these are split during expansion.
	Extractor bool `json:"extractor,omitempty"`
}

// Key returns the node's identity key.
func (n Node) Key() Key {
	return Key{Building: n.Building, RecipeIndex: n.RecipeIndex, Item: n.Item}
}

// Demand returns the node's total material throughput per minute.
func (n Node) Demand() float64 {
	return n.Units * n.Amount
}

// Edge is a directed material flow between two base nodes.
type Edge struct {
	From   Key     // producing node
	To     Key     // consuming node
	Item   string  // item identifier carried by the edge
	Amount float64 // per-minute flow
}

// Graph is a base production graph: nodes in first-visit order plus the
// edges between them. It is immutable once built.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Node returns the node with the given key, if present.
func (g *Graph) Node(k Key) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Key() == k {
			return n, true
		}
	}
	return Node{}, false
}
