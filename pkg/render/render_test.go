package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flowplan/flowplan/pkg/chain"
	"github.com/flowplan/flowplan/pkg/flow"
)

func sampleGraph() flow.Graph {
	plate := flow.Node{
		ID: "constructor/0/iron-plate",
		ExpandedNode: flow.ExpandedNode{
			Node: chain.Node{
				Building: "constructor",
				Item:     "iron-plate",
				Amount:   20,
				Units:    1,
				Power:    4,
			},
			PowerDraw: 4,
		},
		Pos:        flow.Position{X: 0, Y: 90},
		TotalPower: 14,
	}
	ore := flow.Node{
		ID: "miner/0/iron-ore#0",
		ExpandedNode: flow.ExpandedNode{
			Node: chain.Node{
				Building:  "miner",
				Item:      "iron-ore",
				Amount:    120,
				Units:     0.25,
				Power:     5,
				Extractor: true,
			},
			OriginIndex: 0,
			OriginCount: 1,
			Origin:      flow.Origin{Quality: "pure", Rate: 120},
			PowerDraw:   5,
		},
		Pos:        flow.Position{X: 0, Y: 0},
		TotalPower: 14,
	}
	return flow.Graph{
		Nodes: []flow.Node{ore, plate},
		Edges: []flow.Edge{{
			ID:     "0-1:iron-ore",
			From:   ore.ID,
			To:     plate.ID,
			Item:   "iron-ore",
			Amount: 30,
		}},
		TotalPower: 14,
	}
}

func TestToDOT(t *testing.T) {
	g := sampleGraph()
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph flow {",
		`"miner/0/iron-ore#0"`,
		`"constructor/0/iron-plate"`,
		`"miner/0/iron-ore#0" -> "constructor/0/iron-plate"`,
		"iron-ore 30/min",
		"iron-ore (pure)",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "MW") {
		t.Error("compact labels should not include power draw")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Detailed: true})

	for _, want := range []string{"4 MW", "constructor x1", "miner x0.25"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTSplitStyle(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})
	if !strings.Contains(dot, "dashed") {
		t.Error("split extraction node should render with a dashed outline")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := sampleGraph()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if len(got.Nodes) != len(g.Nodes) || len(got.Edges) != len(g.Edges) {
		t.Fatalf("round trip changed shape: %d nodes, %d edges", len(got.Nodes), len(got.Edges))
	}
	if got.TotalPower != g.TotalPower {
		t.Errorf("TotalPower = %v, want %v", got.TotalPower, g.TotalPower)
	}
	if got.Edges[0].Amount != 30 {
		t.Errorf("edge amount = %v, want 30", got.Edges[0].Amount)
	}
}

func TestMarshalJSONDeterministic(t *testing.T) {
	g := sampleGraph()
	a, err := MarshalJSON(g)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalJSON(g)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("MarshalJSON output differs between calls")
	}
}
