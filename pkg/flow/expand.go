package flow

import (
	"math"
	"strconv"

	"github.com/flowplan/flowplan/pkg/chain"
)

// ExpandedNode is a base node after source expansion. For nodes produced by
// an extractor split, OriginCount holds the total number of origins of the
// original node and OriginIndex this node's position among them; for
// passthrough nodes OriginCount is zero.
//
// On split nodes the embedded Amount field reports the origin's own per-unit
// yield, and Units the unit count required for this origin's share of the
// original demand.
type ExpandedNode struct {
	chain.Node

	OriginIndex int    `json:"origin_index,omitempty"`
	OriginCount int    `json:"origin_count,omitempty"`
	Origin      Origin `json:"origin,omitempty"`

	// PowerDraw is the node's total power: ceil(units) times the
	// building's per-unit draw.
	PowerDraw float64 `json:"power_draw"`
}

// IsSplit reports whether the node came from a multi-origin expansion.
func (n ExpandedNode) IsSplit() bool { return n.OriginCount > 0 }

// ID returns a stable identifier for the expanded node: the base key, plus
// an origin suffix for split nodes.
func (n ExpandedNode) ID() string {
	if !n.IsSplit() {
		return n.Key().String()
	}
	return n.Key().String() + "#" + strconv.Itoa(n.OriginIndex)
}

// Expand replaces every extractor node with one node per configured origin
// and passes all other nodes through unchanged. It returns the expanded node
// list together with a mapping from each original node key to the indices of
// its expansions, in origin order. That mapping is the only channel through
// which edge distribution locates expansions.
//
// For a node with total demand D split across N origins, each origin serves
// D/N units of flow; an origin with rate r requires (D/N)/r units, or zero
// units when r is zero (a zero-yield origin is configuration, not an error).
// Summing per-origin demand over all origins reproduces D exactly.
func Expand(nodes []chain.Node, sources SourceConfig) ([]ExpandedNode, map[chain.Key][]int) {
	expanded := make([]ExpandedNode, 0, len(nodes))
	index := make(map[chain.Key][]int, len(nodes))

	for _, n := range nodes {
		if !n.Extractor {
			index[n.Key()] = []int{len(expanded)}
			expanded = append(expanded, ExpandedNode{
				Node:      n,
				PowerDraw: math.Ceil(n.Units) * n.Power,
			})
			continue
		}

		origins := sources.OriginsFor(n.Item)
		demand := n.Demand()
		share := demand / float64(len(origins))

		indices := make([]int, 0, len(origins))
		for i, origin := range origins {
			var units float64
			if origin.Rate > 0 {
				units = share / origin.Rate
			}

			split := n
			split.Amount = origin.Rate
			split.Units = units

			indices = append(indices, len(expanded))
			expanded = append(expanded, ExpandedNode{
				Node:        split,
				OriginIndex: i,
				OriginCount: len(origins),
				Origin:      origin,
				PowerDraw:   math.Ceil(units) * n.Power,
			})
		}
		index[n.Key()] = indices
	}

	return expanded, index
}
