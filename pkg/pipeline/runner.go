package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowplan/flowplan/pkg/cache"
	"github.com/flowplan/flowplan/pkg/errors"
	"github.com/flowplan/flowplan/pkg/flow"
	"github.com/flowplan/flowplan/pkg/layout"
	"github.com/flowplan/flowplan/pkg/observability"
	"github.com/flowplan/flowplan/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → expand → layout → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: Build and expand
	buildStart := time.Now()
	exp, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(exp.Nodes)
	result.Stats.EdgeCount = len(exp.Edges)
	result.CacheInfo.BuildHit = buildHit

	if data, err := marshalExpansion(exp); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("expanded flow",
		"item", opts.TargetItem,
		"rate", opts.TargetRate,
		"nodes", len(exp.Nodes),
		"edges", len(exp.Edges),
		"duration", result.Stats.BuildTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	points, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, exp, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	g, err := assembleGraph(exp, points)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.TotalPower = g.TotalPower

	r.Logger.Info("computed layout",
		"positions", len(points),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"total_power", g.TotalPower,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo runs the build and expand stages with caching and
// returns cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (Expansion, bool, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return Expansion{}, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GraphKey(opts.TargetItem,
		opts.GraphKeyOpts(hashJSON(opts.Catalog), hashJSON(opts.Sources)))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if exp, err := unmarshalExpansion(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return exp, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	exp, err := buildFlow(ctx, opts)
	if err != nil {
		return Expansion{}, false, err
	}

	if data, err := marshalExpansion(exp); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph) == nil {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	return exp, false, nil
}

// Build is a convenience wrapper that discards the cache hit info and
// returns the assembled graph without positions applied.
func (r *Runner) Build(ctx context.Context, opts Options) (flow.Graph, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return flow.Graph{}, err
	}
	r.applyLogger(&opts)

	exp, _, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return flow.Graph{}, err
	}
	points, _, err := r.ComputeLayoutWithCacheInfo(ctx, exp, opts)
	if err != nil {
		return flow.Graph{}, err
	}
	return assembleGraph(exp, points)
}

// ComputeLayoutWithCacheInfo computes positions with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, exp Expansion, opts Options) (map[string]layout.Point, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	expData, err := marshalExpansion(exp)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize flow for cache key")
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(expData), opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var points map[string]layout.Point
		if err := json.Unmarshal(data, &points); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return points, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	points, err := computeLayout(ctx, exp, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(points); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return points, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g flow.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	graphData, err := render.MarshalJSON(g)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph for cache key")
	}
	graphHash := cache.Hash(graphData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := renderArtifacts(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashJSON hashes the canonical JSON encoding of v. Map keys are sorted by
// encoding/json, so identical values always hash identically.
func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
