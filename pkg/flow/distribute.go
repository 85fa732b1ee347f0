package flow

import "github.com/flowplan/flowplan/pkg/chain"

// ExpandedEdge is a base edge rewritten against expanded node indices.
type ExpandedEdge struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

// Distribute rewrites base edges against the expanded node set. Each base
// edge fans out across the cartesian product of its endpoints' expansions,
// with the amount divided equally across the source-side expansions only:
// the total outgoing flow per source expansion stays correct, at the cost of
// multiplying apparent total flow when the destination is also split. That
// trade-off keeps every source expansion connected to every destination
// expansion, which is what a flow visualization needs.
//
// An edge whose endpoint key is missing from the index (a dangling
// reference) is dropped silently.
func Distribute(edges []chain.Edge, index map[chain.Key][]int) []ExpandedEdge {
	var out []ExpandedEdge

	for _, e := range edges {
		fromIndices := index[e.From]
		toIndices := index[e.To]
		if len(fromIndices) == 0 || len(toIndices) == 0 {
			continue
		}

		perEdge := e.Amount / float64(len(fromIndices))
		for _, from := range fromIndices {
			for _, to := range toIndices {
				out = append(out, ExpandedEdge{
					From:   from,
					To:     to,
					Item:   e.Item,
					Amount: perEdge,
				})
			}
		}
	}

	return out
}
