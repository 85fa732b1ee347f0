// Package flow turns a base production graph into a renderable flow graph.
//
// The transformation has three stages, run in order:
//
//  1. Expand: every extractor node is replaced by one node per configured
//     resource origin, with the original node's demand split equally across
//     the origins (see [Expand]).
//  2. Distribute: every base edge is rewritten against the expanded node
//     set, fanning out across expansions of its endpoints while conserving
//     flow per source expansion (see [Distribute]).
//  3. Assemble: expanded nodes, their layout positions, and the expanded
//     edges are merged into a [Graph] with deduplicated edges and a
//     graph-wide power total (see [Assemble]).
//
// The pipeline is pure: no stage mutates its input, every invocation
// recomputes from scratch, and identical inputs produce structurally
// identical outputs.
package flow

// Origin is one alternative way of obtaining a resource, such as a deposit
// of a particular purity. Rate is the per-minute yield of a single unit
// extracting from this origin; it replaces the recipe's base amount on the
// split node.
type Origin struct {
	Quality string  `json:"quality"`
	Rate    float64 `json:"rate"`
}

// Standard purity presets. Arbitrary positive rates are also valid.
var (
	OriginImpure = Origin{Quality: "impure", Rate: 0.5}
	OriginNormal = Origin{Quality: "normal", Rate: 1}
	OriginPure   = Origin{Quality: "pure", Rate: 2}
)

// SourceConfig maps an item identifier to its ordered origin list. The
// caller owns this configuration and re-runs the pipeline whenever it
// changes; the core never mutates it.
type SourceConfig map[string][]Origin

// OriginsFor returns the configured origins for an item. An item with no
// configuration (or an empty list) defaults to a single normal origin.
func (c SourceConfig) OriginsFor(item string) []Origin {
	if origins := c[item]; len(origins) > 0 {
		return origins
	}
	return []Origin{OriginNormal}
}

// Clone returns a deep copy of the configuration. Useful for presentation
// layers that edit a working copy before committing.
func (c SourceConfig) Clone() SourceConfig {
	out := make(SourceConfig, len(c))
	for item, origins := range c {
		cp := make([]Origin, len(origins))
		copy(cp, origins)
		out[item] = cp
	}
	return out
}

// SourceHooks is the side channel through which a presentation layer reports
// origin-configuration edits. The core never invokes these; it only carries
// enough identity (item ID plus origin index on each node) for a renderer to
// wire them up.
type SourceHooks interface {
	// SourceQualityChanged reports that the origin at the given index for
	// an item was changed to a new quality.
	SourceQualityChanged(item string, index int, origin Origin)

	// SourceAdded reports that an origin was appended for an item.
	SourceAdded(item string)

	// SourceRemoved reports that the origin at the given index was removed.
	SourceRemoved(item string, index int)
}

// NoopSourceHooks is a SourceHooks implementation that ignores all events.
type NoopSourceHooks struct{}

func (NoopSourceHooks) SourceQualityChanged(string, int, Origin) {}
func (NoopSourceHooks) SourceAdded(string)                       {}
func (NoopSourceHooks) SourceRemoved(string, int)                {}
