// Package pipeline provides the core planning pipeline for flowplan.
//
// This package implements the complete build → expand → layout → render
// pipeline that can be used by CLI and API components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: Resolve the production chain for a target item and rate
//  2. Expand: Split extraction steps into per-origin nodes and fan edges out
//  3. Layout: Compute visual positions for the flow graph
//  4. Render: Generate output in various formats (DOT, SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    TargetItem: "iron-plate",
//	    TargetRate: 60,
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowplan/flowplan/pkg/cache"
	"github.com/flowplan/flowplan/pkg/catalog"
	"github.com/flowplan/flowplan/pkg/errors"
	"github.com/flowplan/flowplan/pkg/flow"
	"github.com/flowplan/flowplan/pkg/layout"
	"github.com/flowplan/flowplan/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTargetRate is the production rate assumed when none is given.
	// Non-positive rates are coerced to this value rather than rejected so
	// a bare item name always yields a usable plan.
	DefaultTargetRate = 1.0

	// DefaultNodeWidth is the footprint width passed to the layout engine.
	DefaultNodeWidth = 160.0

	// DefaultNodeHeight is the footprint height passed to the layout engine.
	DefaultNodeHeight = 60.0
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the planning pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	TargetItem string            `json:"item" bson:"item"`
	TargetRate float64           `json:"rate,omitempty" bson:"rate,omitempty"`
	Sources    flow.SourceConfig `json:"sources,omitempty" bson:"sources,omitempty"`
	Refresh    bool              `json:"refresh,omitempty" bson:"refresh,omitempty"`

	// Layout options
	Direction  string  `json:"direction,omitempty" bson:"direction,omitempty"` // top-down or left-right
	NodeWidth  float64 `json:"node_width,omitempty" bson:"node_width,omitempty"`
	NodeHeight float64 `json:"node_height,omitempty" bson:"node_height,omitempty"`
	RankSep    float64 `json:"rank_sep,omitempty" bson:"rank_sep,omitempty"`
	NodeSep    float64 `json:"node_sep,omitempty" bson:"node_sep,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty" bson:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty" bson:"detailed,omitempty"`

	// Runtime options (not serialized)
	Catalog *catalog.Catalog `json:"-" bson:"-"`
	Engine  layout.Engine    `json:"-" bson:"-"`
	Logger  *log.Logger      `json:"-" bson:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-" bson:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the assembled flow graph with positions and power totals.
	Graph flow.Graph

	// GraphHash is the content hash of the expanded structure, before layout.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	TotalPower float64
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the expanded structure came from cache
	LayoutHit bool // Whether layout positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for chain building.
func (o *Options) ValidateForBuild() error {
	if o.TargetItem == "" {
		return errors.New(errors.ErrCodeInvalidInput, "target item is required")
	}
	if o.TargetRate <= 0 {
		o.TargetRate = DefaultTargetRate
	}
	if o.Catalog == nil {
		o.Catalog = catalog.Builtin()
	}
	if o.Sources == nil {
		o.Sources = flow.SourceConfig{}
	}
	o.setLogger()
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if _, err := layout.ParseDirection(o.Direction); err != nil {
		return err
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	def := layout.DefaultConfig()
	if o.RankSep == 0 {
		o.RankSep = def.RankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = def.NodeSep
	}
	if o.Engine == nil {
		o.Engine = layout.NewLayered()
	}
	o.setLogger()
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutConfig converts the option fields into a layout configuration.
// Direction has already been validated, so parse failures fall back to
// the default axis.
func (o *Options) LayoutConfig() layout.Config {
	dir, _ := layout.ParseDirection(o.Direction)
	return layout.Config{
		Direction: dir,
		RankSep:   o.RankSep,
		NodeSep:   o.NodeSep,
	}
}

// RenderOptions converts the option fields into render options.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Detailed: o.Detailed}
}

// GraphKeyOpts returns cache key options for the expanded structure.
func (o *Options) GraphKeyOpts(catalogHash, sourcesHash string) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		TargetRate:  o.TargetRate,
		CatalogHash: catalogHash,
		SourcesHash: sourcesHash,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction:  o.Direction,
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		RankSep:    o.RankSep,
		NodeSep:    o.NodeSep,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}
