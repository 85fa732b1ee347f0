package flow

import (
	"fmt"
	"strconv"
)

// Position is a 2-D node coordinate assigned by a layout engine. The core
// treats it as opaque; the layout contract is documented in pkg/layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned node in the final flow graph.
type Node struct {
	// ID is the expanded node's stable identifier.
	ID string `json:"id"`

	ExpandedNode

	Pos Position `json:"pos"`

	// TotalPower is the graph-wide power aggregate, stamped on every node
	// for display purposes (e.g., rendering a node's share of total draw).
	TotalPower float64 `json:"total_power"`
}

// Edge is a labeled directed edge in the final flow graph.
type Edge struct {
	// ID is the edge identity, derived from (from, to, item). Unique
	// within a Graph.
	ID string `json:"id"`

	From   string  `json:"from"` // source node ID
	To     string  `json:"to"`   // target node ID
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

// Graph is the final output of the flow pipeline: positioned nodes and
// deduplicated labeled edges, ready for a rendering layer.
type Graph struct {
	Nodes      []Node  `json:"nodes"`
	Edges      []Edge  `json:"edges"`
	TotalPower float64 `json:"total_power"`
}

// EdgeID derives the identity of an edge between two expanded node indices
// carrying the given item.
func EdgeID(from, to int, item string) string {
	return strconv.Itoa(from) + "-" + strconv.Itoa(to) + ":" + item
}

// Assemble merges expanded nodes, their layout positions, and expanded edges
// into the final graph. positions must hold exactly one coordinate per node,
// indexed like nodes; Assemble returns an error otherwise, since a layout
// engine that violates its contract would silently misplace nodes.
//
// Edges are deduplicated by (from, to, item) identity: when two expanded
// edges collide, the first one is kept and later ones are discarded. Callers
// must not assume a surviving edge's amount equals the true summed flow
// between that pair if collisions occurred.
//
// The graph-wide power total is the sum of every expanded node's power draw;
// it is stamped on the graph and on each node payload.
func Assemble(nodes []ExpandedNode, positions []Position, edges []ExpandedEdge) (Graph, error) {
	if len(positions) != len(nodes) {
		return Graph{}, fmt.Errorf("layout returned %d positions for %d nodes", len(positions), len(nodes))
	}

	var totalPower float64
	for _, n := range nodes {
		totalPower += n.PowerDraw
	}

	out := Graph{
		Nodes:      make([]Node, len(nodes)),
		TotalPower: totalPower,
	}
	for i, n := range nodes {
		out.Nodes[i] = Node{
			ID:           n.ID(),
			ExpandedNode: n,
			Pos:          positions[i],
			TotalPower:   totalPower,
		}
	}

	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		id := EdgeID(e.From, e.To, e.Item)
		if seen[id] {
			continue
		}
		seen[id] = true
		out.Edges = append(out.Edges, Edge{
			ID:     id,
			From:   out.Nodes[e.From].ID,
			To:     out.Nodes[e.To].ID,
			Item:   e.Item,
			Amount: e.Amount,
		})
	}

	return out, nil
}
