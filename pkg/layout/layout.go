// Package layout computes 2-D coordinates for flow graphs.
//
// The package is deliberately narrow: callers hand over opaque node
// identifiers with rectangular footprints and directed edges, and receive
// one center coordinate per identifier. Nothing about production chains
// leaks in, so the algorithm is swappable without touching the flow
// transformation.
//
// # Contract
//
// An [Engine] must return exactly one coordinate per input node, must not
// overlap two nodes of the same rank, and should bias nodes with no
// incoming edges toward one end of the primary axis so that flow progresses
// generally monotonically along it. Aesthetic quality beyond that is not
// part of the contract.
//
// The provided [Layered] engine is deterministic: identical inputs produce
// identical coordinates.
package layout

import "github.com/flowplan/flowplan/pkg/errors"

// Direction selects the primary flow axis.
type Direction int

const (
	// TopDown lays ranks out vertically, sources at the top.
	TopDown Direction = iota
	// LeftRight lays ranks out horizontally, sources at the left.
	LeftRight
)

// String returns the flag form of the direction.
func (d Direction) String() string {
	if d == LeftRight {
		return "left-right"
	}
	return "top-down"
}

// ParseDirection converts a flag value to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "top-down", "":
		return TopDown, nil
	case "left-right":
		return LeftRight, nil
	default:
		return TopDown, errors.New(errors.ErrCodeInvalidInput, "unknown direction %q (must be top-down or left-right)", s)
	}
}

// Node is an opaque identifier with a fixed rectangular footprint.
type Node struct {
	ID     string
	Width  float64
	Height float64
}

// Edge is a directed connection between two node identifiers.
type Edge struct {
	From string
	To   string
}

// Point is a node center coordinate.
type Point struct {
	X float64
	Y float64
}

// Config holds direction and spacing settings.
type Config struct {
	// Direction is the primary flow axis.
	Direction Direction

	// RankSep is the minimum separation between adjacent ranks.
	RankSep float64

	// NodeSep is the minimum separation between siblings within a rank.
	NodeSep float64
}

// DefaultConfig returns spacing that works for typical node footprints.
func DefaultConfig() Config {
	return Config{
		Direction: TopDown,
		RankSep:   60,
		NodeSep:   30,
	}
}

// Engine computes positions for a graph. Implementations must honor the
// package contract documented above.
type Engine interface {
	Layout(nodes []Node, edges []Edge, cfg Config) (map[string]Point, error)
}

// validate rejects inputs an engine cannot place: duplicate identifiers and
// edges referencing unknown nodes.
func validate(nodes []Node, edges []Edge) error {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "layout node with empty ID")
		}
		if ids[n.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate layout node ID %q", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range edges {
		if !ids[e.From] || !ids[e.To] {
			return errors.New(errors.ErrCodeInvalidInput, "layout edge %s->%s references unknown node", e.From, e.To)
		}
	}
	return nil
}
