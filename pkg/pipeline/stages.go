package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flowplan/flowplan/pkg/chain"
	"github.com/flowplan/flowplan/pkg/errors"
	"github.com/flowplan/flowplan/pkg/flow"
	"github.com/flowplan/flowplan/pkg/layout"
	"github.com/flowplan/flowplan/pkg/observability"
	"github.com/flowplan/flowplan/pkg/render"
)

// Expansion is the intermediate between the expand and layout stages:
// per-origin nodes plus distributed edges, before any positions are
// assigned. It is the unit cached under graph keys.
type Expansion struct {
	Nodes []flow.ExpandedNode `json:"nodes"`
	Edges []flow.ExpandedEdge `json:"edges"`
}

func marshalExpansion(e Expansion) ([]byte, error) {
	return json.Marshal(e)
}

func unmarshalExpansion(data []byte) (Expansion, error) {
	var e Expansion
	if err := json.Unmarshal(data, &e); err != nil {
		return Expansion{}, err
	}
	return e, nil
}

// buildFlow runs the build and expand stages: resolve the production chain,
// split extraction steps per origin, and distribute edges across the splits.
func buildFlow(ctx context.Context, opts Options) (Expansion, error) {
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnBuildStart(ctx, opts.TargetItem, opts.TargetRate)
	g, err := chain.Build(opts.Catalog, opts.TargetItem, opts.TargetRate)
	nodeCount := 0
	if g != nil {
		nodeCount = len(g.Nodes)
	}
	hooks.OnBuildComplete(ctx, opts.TargetItem, nodeCount, time.Since(start), err)
	if err != nil {
		return Expansion{}, err
	}

	expandStart := time.Now()
	hooks.OnExpandStart(ctx, len(g.Nodes))
	nodes, index := flow.Expand(g.Nodes, opts.Sources)
	edges := flow.Distribute(g.Edges, index)
	hooks.OnExpandComplete(ctx, len(nodes), time.Since(expandStart))

	return Expansion{Nodes: nodes, Edges: edges}, nil
}

// computeLayout assigns one position per expanded node.
func computeLayout(ctx context.Context, exp Expansion, opts Options) (map[string]layout.Point, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, len(exp.Nodes))

	lnodes := make([]layout.Node, len(exp.Nodes))
	for i, n := range exp.Nodes {
		lnodes[i] = layout.Node{
			ID:     n.ID(),
			Width:  opts.NodeWidth,
			Height: opts.NodeHeight,
		}
	}
	ledges := make([]layout.Edge, len(exp.Edges))
	for i, e := range exp.Edges {
		ledges[i] = layout.Edge{
			From: exp.Nodes[e.From].ID(),
			To:   exp.Nodes[e.To].ID(),
		}
	}

	points, err := opts.Engine.Layout(lnodes, ledges, opts.LayoutConfig())
	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	return points, err
}

// assembleGraph joins the expanded structure with layout positions into the
// final flow graph.
func assembleGraph(exp Expansion, points map[string]layout.Point) (flow.Graph, error) {
	positions := make([]flow.Position, len(exp.Nodes))
	for i, n := range exp.Nodes {
		p, ok := points[n.ID()]
		if !ok {
			return flow.Graph{}, errors.New(errors.ErrCodeInternal, "layout returned no position for %s", n.ID())
		}
		positions[i] = flow.Position{X: p.X, Y: p.Y}
	}
	return flow.Assemble(exp.Nodes, positions, exp.Edges)
}

// renderArtifacts produces every requested format from the assembled graph.
func renderArtifacts(ctx context.Context, g flow.Graph, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var err error
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatDOT:
			data = []byte(render.ToDOT(g, opts.RenderOptions()))
		case FormatSVG:
			data, err = render.RenderSVG(render.ToDOT(g, opts.RenderOptions()))
		case FormatPNG:
			data, err = render.RenderPNG(render.ToDOT(g, opts.RenderOptions()))
		case FormatJSON:
			data, err = render.MarshalJSON(g)
		default:
			err = errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}
		if err != nil {
			break
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}
