package layout

import (
	"sort"
)

// Layered is a deterministic hierarchical layout engine. It assigns each
// node a rank via longest-path layering from the sources, reduces edge
// crossings with barycenter ordering sweeps, and spaces siblings within a
// rank by their footprints plus the configured separation. Ranks are
// centered on the cross axis.
type Layered struct {
	// Sweeps is the number of barycenter ordering passes. Zero uses a
	// sensible default.
	Sweeps int
}

// defaultSweeps is enough for the small and mid-size graphs this package
// sees; more passes stop changing the order well before this.
const defaultSweeps = 4

// NewLayered creates a layered engine with default settings.
func NewLayered() *Layered {
	return &Layered{}
}

// Layout implements Engine.
func (l *Layered) Layout(nodes []Node, edges []Edge, cfg Config) (map[string]Point, error) {
	if err := validate(nodes, edges); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return map[string]Point{}, nil
	}

	ranks := assignRanks(nodes, edges)
	order := initialOrder(nodes, ranks)

	sweeps := l.Sweeps
	if sweeps == 0 {
		sweeps = defaultSweeps
	}
	refineOrder(order, edges, sweeps)

	return place(nodes, order, cfg), nil
}

// assignRanks computes longest-path ranks: sources sit at rank 0 and every
// edge points to an equal or deeper rank. Back edges in a (malformed,
// cyclic) input are ignored rather than looping forever.
func assignRanks(nodes []Node, edges []Edge) map[string]int {
	out := make(map[string][]string, len(nodes))
	indegree := make(map[string]int, len(nodes))
	for _, e := range edges {
		out[e.From] = append(out[e.From], e.To)
		indegree[e.To]++
	}

	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	// Kahn-style relaxation: a node's rank is one past its deepest parent.
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range out[id] {
			if r := ranks[id] + 1; r > ranks[child] {
				ranks[child] = r
			}
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	return ranks
}

// initialOrder groups node indices per rank in input order.
func initialOrder(nodes []Node, ranks map[string]int) [][]string {
	maxRank := 0
	for _, n := range nodes {
		if r := ranks[n.ID]; r > maxRank {
			maxRank = r
		}
	}

	order := make([][]string, maxRank+1)
	for _, n := range nodes {
		r := ranks[n.ID]
		order[r] = append(order[r], n.ID)
	}
	return order
}

// refineOrder runs alternating down/up barycenter sweeps over the rank
// ordering. Sorting is stable so ties keep their previous relative order,
// which keeps the result deterministic.
func refineOrder(order [][]string, edges []Edge, sweeps int) {
	parents := make(map[string][]string)
	children := make(map[string][]string)
	for _, e := range edges {
		children[e.From] = append(children[e.From], e.To)
		parents[e.To] = append(parents[e.To], e.From)
	}

	for s := 0; s < sweeps; s++ {
		if s%2 == 0 {
			for r := 1; r < len(order); r++ {
				sortByBarycenter(order[r], order[r-1], parents)
			}
		} else {
			for r := len(order) - 2; r >= 0; r-- {
				sortByBarycenter(order[r], order[r+1], children)
			}
		}
	}
}

// sortByBarycenter reorders row by the mean position of each node's
// neighbors in the fixed adjacent row. Nodes without neighbors keep their
// current position value so they don't jump around.
func sortByBarycenter(row, fixed []string, neighbors map[string][]string) {
	pos := make(map[string]int, len(fixed))
	for i, id := range fixed {
		pos[id] = i
	}

	weight := make(map[string]float64, len(row))
	for i, id := range row {
		ns := neighbors[id]
		if len(ns) == 0 {
			weight[id] = float64(i)
			continue
		}
		var sum float64
		for _, n := range ns {
			sum += float64(pos[n])
		}
		weight[id] = sum / float64(len(ns))
	}

	sort.SliceStable(row, func(i, j int) bool {
		return weight[row[i]] < weight[row[j]]
	})
}

// place converts the per-rank ordering into center coordinates. Siblings
// are packed with NodeSep between footprints and each rank is centered on
// the cross axis; ranks advance along the primary axis by the tallest node
// in the rank plus RankSep.
func place(nodes []Node, order [][]string, cfg Config) map[string]Point {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// Footprint extent along the cross axis and the primary axis depend on
	// the direction: top-down uses width for packing, height for advancing.
	cross := func(n Node) float64 { return n.Width }
	main := func(n Node) float64 { return n.Height }
	if cfg.Direction == LeftRight {
		cross = func(n Node) float64 { return n.Height }
		main = func(n Node) float64 { return n.Width }
	}

	points := make(map[string]Point, len(nodes))
	var offset float64 // primary-axis position of the current rank's near edge

	for _, row := range order {
		if len(row) == 0 {
			continue
		}

		var rowCross, rowMain float64
		for _, id := range row {
			n := byID[id]
			rowCross += cross(n)
			if main(n) > rowMain {
				rowMain = main(n)
			}
		}
		rowCross += cfg.NodeSep * float64(len(row)-1)

		at := -rowCross / 2
		for _, id := range row {
			n := byID[id]
			center := at + cross(n)/2
			if cfg.Direction == LeftRight {
				points[id] = Point{X: offset + rowMain/2, Y: center}
			} else {
				points[id] = Point{X: center, Y: offset + rowMain/2}
			}
			at += cross(n) + cfg.NodeSep
		}

		offset += rowMain + cfg.RankSep
	}

	return points
}

// Ensure Layered implements Engine.
var _ Engine = (*Layered)(nil)
