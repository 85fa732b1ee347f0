package flow

import (
	"testing"

	"github.com/flowplan/flowplan/pkg/chain"
)

func expandedFixture() []ExpandedNode {
	nodes := []chain.Node{
		{Building: "miner", RecipeIndex: 0, Item: "iron-ore", Amount: 60, Units: 0.5, Power: 5, Extractor: true},
		{Building: "smelter", RecipeIndex: 1, Item: "iron-ingot", Amount: 30, Units: 1, Power: 4},
	}
	expanded, _ := Expand(nodes, nil)
	return expanded
}

func positionsFor(n int) []Position {
	out := make([]Position, n)
	for i := range out {
		out[i] = Position{X: float64(i * 100), Y: float64(i * 50)}
	}
	return out
}

func TestAssembleBasic(t *testing.T) {
	nodes := expandedFixture()
	edges := []ExpandedEdge{{From: 0, To: 1, Item: "iron-ore", Amount: 30}}

	g, err := Assemble(nodes, positionsFor(len(nodes)), edges)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(g.Edges))
	}

	// Positions assigned by index
	if g.Nodes[1].Pos != (Position{X: 100, Y: 50}) {
		t.Errorf("node 1 pos = %+v, want {100 50}", g.Nodes[1].Pos)
	}

	// Edge references node IDs, not indices
	e := g.Edges[0]
	if e.From != g.Nodes[0].ID || e.To != g.Nodes[1].ID {
		t.Errorf("edge endpoints = %s -> %s, want %s -> %s", e.From, e.To, g.Nodes[0].ID, g.Nodes[1].ID)
	}
	if !approx(e.Amount, 30) {
		t.Errorf("edge amount = %v, want 30", e.Amount)
	}

	// Total power: miner ceil(0.5)*5 + smelter ceil(1)*4 = 9, stamped on
	// the graph and on every node
	if !approx(g.TotalPower, 9) {
		t.Errorf("TotalPower = %v, want 9", g.TotalPower)
	}
	for i, n := range g.Nodes {
		if !approx(n.TotalPower, 9) {
			t.Errorf("node %d TotalPower = %v, want 9", i, n.TotalPower)
		}
	}
}

func TestAssembleDeduplicatesEdges(t *testing.T) {
	// Two expanded edges that collide on identical (source, target, item):
	// exactly one survives, and it is the first.
	nodes := expandedFixture()
	edges := []ExpandedEdge{
		{From: 0, To: 1, Item: "iron-ore", Amount: 20},
		{From: 0, To: 1, Item: "iron-ore", Amount: 15},
	}

	g, err := Assemble(nodes, positionsFor(len(nodes)), edges)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	if len(g.Edges) != 1 {
		t.Fatalf("edges = %d, want 1 after dedupe", len(g.Edges))
	}
	if !approx(g.Edges[0].Amount, 20) {
		t.Errorf("surviving edge amount = %v, want 20 (first wins)", g.Edges[0].Amount)
	}
}

func TestAssembleKeepsDistinctItems(t *testing.T) {
	// Same endpoints, different item: both edges survive.
	nodes := expandedFixture()
	edges := []ExpandedEdge{
		{From: 0, To: 1, Item: "iron-ore", Amount: 20},
		{From: 0, To: 1, Item: "stone", Amount: 5},
	}

	g, err := Assemble(nodes, positionsFor(len(nodes)), edges)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(g.Edges) != 2 {
		t.Errorf("edges = %d, want 2", len(g.Edges))
	}

	// Edge IDs are unique within the graph
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		if seen[e.ID] {
			t.Errorf("duplicate edge ID %q", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestAssemblePositionCountMismatch(t *testing.T) {
	nodes := expandedFixture()

	if _, err := Assemble(nodes, positionsFor(1), nil); err == nil {
		t.Error("Assemble should reject a position count mismatch")
	}
}

func TestAssembleEmpty(t *testing.T) {
	g, err := Assemble(nil, nil, nil)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(g.Nodes) != 0 || len(g.Edges) != 0 || g.TotalPower != 0 {
		t.Errorf("empty assemble = %+v, want empty graph", g)
	}
}

func TestEdgeID(t *testing.T) {
	if got := EdgeID(3, 5, "iron-ore"); got != "3-5:iron-ore" {
		t.Errorf("EdgeID = %q, want %q", got, "3-5:iron-ore")
	}
	if EdgeID(1, 2, "a") == EdgeID(2, 1, "a") {
		t.Error("EdgeID must be direction-sensitive")
	}
}

func TestSourceConfigOriginsFor(t *testing.T) {
	cfg := SourceConfig{"iron-ore": {OriginImpure, OriginPure}}

	if got := cfg.OriginsFor("iron-ore"); len(got) != 2 {
		t.Errorf("OriginsFor(iron-ore) = %d origins, want 2", len(got))
	}

	// Missing or empty configuration defaults to a single normal origin
	for _, item := range []string{"copper-ore", ""} {
		got := cfg.OriginsFor(item)
		if len(got) != 1 || got[0] != OriginNormal {
			t.Errorf("OriginsFor(%q) = %+v, want [normal]", item, got)
		}
	}
}

func TestSourceConfigClone(t *testing.T) {
	cfg := SourceConfig{"iron-ore": {OriginImpure}}
	clone := cfg.Clone()

	clone["iron-ore"][0] = OriginPure
	if cfg["iron-ore"][0] != OriginImpure {
		t.Error("Clone should not share origin slices with the original")
	}
}
