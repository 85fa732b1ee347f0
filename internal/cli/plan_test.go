package cli

import (
	"testing"

	"github.com/flowplan/flowplan/pkg/flow"
)

func TestParseSourceSpecs(t *testing.T) {
	cfg, err := parseSourceSpecs([]string{
		"iron-ore=pure,impure",
		"copper-ore=normal",
		"bauxite=120",
	})
	if err != nil {
		t.Fatalf("parseSourceSpecs: %v", err)
	}

	if got := cfg["iron-ore"]; len(got) != 2 || got[0] != flow.OriginPure || got[1] != flow.OriginImpure {
		t.Errorf("iron-ore = %v", got)
	}
	if got := cfg["copper-ore"]; len(got) != 1 || got[0] != flow.OriginNormal {
		t.Errorf("copper-ore = %v", got)
	}
	if got := cfg["bauxite"]; len(got) != 1 || got[0].Rate != 120 || got[0].Quality != "custom" {
		t.Errorf("bauxite = %v", got)
	}
}

func TestParseSourceSpecsEmpty(t *testing.T) {
	cfg, err := parseSourceSpecs(nil)
	if err != nil {
		t.Fatalf("parseSourceSpecs(nil): %v", err)
	}
	if cfg != nil {
		t.Errorf("cfg = %v, want nil", cfg)
	}
}

func TestParseSourceSpecsInvalid(t *testing.T) {
	for _, spec := range []string{
		"iron-ore",
		"=pure",
		"iron-ore=",
		"iron-ore=shiny",
		"iron-ore=-3",
	} {
		if _, err := parseSourceSpecs([]string{spec}); err == nil {
			t.Errorf("spec %q should fail", spec)
		}
	}
}

func TestParseOriginWhitespace(t *testing.T) {
	cfg, err := parseSourceSpecs([]string{"iron-ore= pure , normal"})
	if err != nil {
		t.Fatalf("parseSourceSpecs: %v", err)
	}
	got := cfg["iron-ore"]
	if len(got) != 2 || got[0] != flow.OriginPure || got[1] != flow.OriginNormal {
		t.Errorf("iron-ore = %v", got)
	}
}

func TestPipelineOptions(t *testing.T) {
	opts, err := pipelineOptions("rotor", planOpts{
		rate:      4,
		sources:   []string{"iron-ore=pure"},
		formats:   []string{"dot"},
		direction: "left-right",
		detailed:  true,
	})
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}

	if opts.TargetItem != "rotor" || opts.TargetRate != 4 {
		t.Errorf("target = %s@%v", opts.TargetItem, opts.TargetRate)
	}
	if opts.Direction != "left-right" || !opts.Detailed {
		t.Errorf("layout/render flags not carried: %+v", opts)
	}
	if len(opts.Sources["iron-ore"]) != 1 {
		t.Errorf("sources = %v", opts.Sources)
	}
	if opts.Catalog != nil {
		t.Error("catalog should stay nil so the pipeline defaults to the builtin")
	}
}
