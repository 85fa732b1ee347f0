// Package render turns flow graphs into output artifacts.
//
// All presentation concerns live here: the flow core emits plain data
// records, and this package owns markup, labels, and styling. Supported
// formats are Graphviz DOT, SVG (rendered via Graphviz), and an indented
// JSON wire format for API responses and caching.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flowplan/flowplan/pkg/flow"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes unit counts and power draw in node labels.
	// When false, only the item and rate are shown.
	Detailed bool
}

// ToDOT converts a flow graph to Graphviz DOT format. The layout positions
// computed by pkg/layout are embedded as pos attributes so external tools
// can reproduce the arrangement; Graphviz's own engines ignore them unless
// invoked with a fixed-position layout.
//
// Split extraction nodes are rendered with a dashed outline to distinguish
// origins from ordinary production steps.
func ToDOT(g flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, fmt.Sprintf("%s %.4g/min", e.Item, e.Amount))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n flow.Node, detailed bool) string {
	lines := []string{n.Item}
	if n.IsSplit() {
		lines[0] = fmt.Sprintf("%s (%s)", n.Item, n.Origin.Quality)
	}
	lines = append(lines, fmt.Sprintf("%.4g/min", n.Units*n.Amount))

	if detailed {
		lines = append(lines,
			fmt.Sprintf("%s x%.4g", n.Building, n.Units),
			fmt.Sprintf("%.4g MW", n.PowerDraw))
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(n flow.Node, label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.2f,%.2f\"", n.Pos.X, n.Pos.Y),
	}
	if n.IsSplit() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
