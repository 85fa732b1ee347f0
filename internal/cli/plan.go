package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowplan/flowplan/pkg/cache"
	"github.com/flowplan/flowplan/pkg/catalog"
	"github.com/flowplan/flowplan/pkg/flow"
	"github.com/flowplan/flowplan/pkg/pipeline"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	rate      float64  // target production rate per minute
	catalog   string   // catalog TOML path (builtin if empty)
	sources   []string // origin specs, e.g. "iron-ore=pure,impure"
	formats   []string // output formats
	output    string   // output path (single format) or basename
	direction string   // layout direction
	detailed  bool     // include units and power in node labels
	refresh   bool     // bypass the pipeline cache
	noCache   bool     // disable caching entirely
}

// newPlanCmd creates the plan command.
func newPlanCmd() *cobra.Command {
	opts := planOpts{
		rate:      pipeline.DefaultTargetRate,
		formats:   []string{pipeline.FormatSVG},
		direction: "top-down",
	}

	cmd := &cobra.Command{
		Use:   "plan <item>",
		Short: "Compute a production plan and render it",
		Long: `Compute the full production chain behind a target item and rate, and
render the resulting flow graph.

Extraction steps are split across the origins configured with --source;
items without configuration extract from a single normal deposit.

Examples:
  flowplan plan iron-plate --rate 60
  flowplan plan rotor --rate 4 --source iron-ore=pure,impure --format dot,json
  flowplan plan screw --catalog factory.toml -o screw.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0], opts)
		},
	}

	cmd.Flags().Float64VarP(&opts.rate, "rate", "r", opts.rate, "target production rate per minute")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "catalog TOML file (builtin catalog if empty)")
	cmd.Flags().StringArrayVarP(&opts.sources, "source", "s", nil, "origins for an item: item=quality[,quality...] (impure, normal, pure, or a numeric rate)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", opts.formats, "output formats: dot, svg, png, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path (single format) or basename (default: the item ID)")
	cmd.Flags().StringVar(&opts.direction, "direction", opts.direction, "layout direction: top-down or left-right")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include unit counts and power draw in node labels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

func runPlan(cmd *cobra.Command, item string, opts planOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	pipeOpts, err := pipelineOptions(item, opts)
	if err != nil {
		return err
	}
	pipeOpts.Logger = logger

	runner, err := newRunner(logger, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		printError("Planning failed: %v", err)
		return err
	}
	prog.done(fmt.Sprintf("Planned %d steps", len(result.Graph.Nodes)))

	printSuccess("Planned %s at %.4g/min", item, pipeOpts.TargetRate)
	printStats(len(result.Graph.Nodes), len(result.Graph.Edges), result.Graph.TotalPower, result.CacheInfo.BuildHit)

	return writeArtifacts(item, opts, result.Artifacts)
}

// pipelineOptions converts plan flags into pipeline options.
func pipelineOptions(item string, opts planOpts) (pipeline.Options, error) {
	sources, err := parseSourceSpecs(opts.sources)
	if err != nil {
		return pipeline.Options{}, err
	}

	var cat *catalog.Catalog
	if opts.catalog != "" {
		cat, err = catalog.Load(opts.catalog)
		if err != nil {
			return pipeline.Options{}, err
		}
	}

	return pipeline.Options{
		TargetItem: item,
		TargetRate: opts.rate,
		Sources:    sources,
		Catalog:    cat,
		Direction:  opts.direction,
		Formats:    opts.formats,
		Detailed:   opts.detailed,
		Refresh:    opts.refresh,
	}, nil
}

// parseSourceSpecs parses repeated --source flags into a source configuration.
// Each spec is item=origin[,origin...]; an origin is a purity preset name or
// a numeric per-unit rate.
func parseSourceSpecs(specs []string) (flow.SourceConfig, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	cfg := make(flow.SourceConfig, len(specs))
	for _, spec := range specs {
		item, list, ok := strings.Cut(spec, "=")
		if !ok || item == "" || list == "" {
			return nil, fmt.Errorf("invalid source spec %q (want item=quality[,quality...])", spec)
		}
		var origins []flow.Origin
		for _, name := range strings.Split(list, ",") {
			origin, err := parseOrigin(strings.TrimSpace(name))
			if err != nil {
				return nil, fmt.Errorf("source spec %q: %w", spec, err)
			}
			origins = append(origins, origin)
		}
		cfg[item] = origins
	}
	return cfg, nil
}

func parseOrigin(name string) (flow.Origin, error) {
	switch name {
	case "impure":
		return flow.OriginImpure, nil
	case "normal":
		return flow.OriginNormal, nil
	case "pure":
		return flow.OriginPure, nil
	}
	rate, err := strconv.ParseFloat(name, 64)
	if err != nil || rate < 0 {
		return flow.Origin{}, fmt.Errorf("unknown origin %q (want impure, normal, pure, or a non-negative rate)", name)
	}
	return flow.Origin{Quality: "custom", Rate: rate}, nil
}

// newRunner builds a pipeline runner backed by the file cache, or an
// uncached runner when caching is disabled.
func newRunner(logger *log.Logger, noCache bool) (*pipeline.Runner, error) {
	if noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil, logger), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return pipeline.NewRunner(fc, nil, logger), nil
}

// writeArtifacts writes each rendered format to disk. With a single format
// and an explicit --output, the artifact goes exactly there; otherwise each
// format gets <base>.<format>.
func writeArtifacts(item string, opts planOpts, artifacts map[string][]byte) error {
	base := opts.output
	if base == "" {
		base = item
	}

	for _, format := range opts.formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}

		path := base + "." + format
		if opts.output != "" && len(opts.formats) == 1 {
			path = opts.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		printFile(abs)
	}
	return nil
}
