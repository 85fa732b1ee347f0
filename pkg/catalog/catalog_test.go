package catalog

import (
	"strings"
	"testing"
)

const sampleTOML = `
[[items]]
id = "iron-ore"
name = "Iron Ore"

[[items]]
id = "iron-ingot"
name = "Iron Ingot"

[[buildings]]
id = "miner"
name = "Miner Mk.1"
power = 5.0
extractor = true

[[buildings]]
id = "smelter"
name = "Smelter"
power = 4.0

[[recipes]]
name = "Iron Ore"
building = "miner"
outputs = [{ item = "iron-ore", amount = 60.0 }]

[[recipes]]
name = "Iron Ingot"
building = "smelter"
outputs = [{ item = "iron-ingot", amount = 30.0 }]
inputs = [{ item = "iron-ore", amount = 30.0 }]
`

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(sampleTOML))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if len(c.Items) != 2 {
		t.Errorf("Items = %d, want 2", len(c.Items))
	}
	if len(c.Buildings) != 2 {
		t.Errorf("Buildings = %d, want 2", len(c.Buildings))
	}
	if len(c.Recipes) != 2 {
		t.Errorf("Recipes = %d, want 2", len(c.Recipes))
	}

	b, ok := c.Building("miner")
	if !ok {
		t.Fatal("Building(miner) not found")
	}
	if !b.Extractor {
		t.Error("miner should be an extractor")
	}
	if b.Power != 5 {
		t.Errorf("miner power = %v, want 5", b.Power)
	}

	if _, ok := c.Item("iron-ingot"); !ok {
		t.Error("Item(iron-ingot) not found")
	}
	if _, ok := c.Item("nonexistent"); ok {
		t.Error("Item(nonexistent) should not be found")
	}
}

func TestDecodeDuplicateIDs(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{
			name: "duplicate item",
			toml: `
[[items]]
id = "iron-ore"
[[items]]
id = "iron-ore"
`,
		},
		{
			name: "duplicate building",
			toml: `
[[buildings]]
id = "miner"
[[buildings]]
id = "miner"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.toml)); err == nil {
				t.Error("Decode should reject duplicate IDs")
			}
		})
	}
}

func TestRecipesFor(t *testing.T) {
	c, err := Decode(strings.NewReader(sampleTOML))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	recipes := c.RecipesFor("iron-ingot")
	if len(recipes) != 1 {
		t.Fatalf("RecipesFor(iron-ingot) = %d recipes, want 1", len(recipes))
	}
	if recipes[0].Index != 1 {
		t.Errorf("recipe index = %d, want 1", recipes[0].Index)
	}
	if recipes[0].Recipe.Building != "smelter" {
		t.Errorf("recipe building = %q, want smelter", recipes[0].Recipe.Building)
	}

	if got := c.RecipesFor("unknown"); len(got) != 0 {
		t.Errorf("RecipesFor(unknown) = %d recipes, want 0", len(got))
	}
}

func TestOutputAmount(t *testing.T) {
	r := Recipe{Outputs: []Stack{{Item: "screw", Amount: 40}, {Item: "scrap", Amount: 5}}}

	if got := r.OutputAmount("screw"); got != 40 {
		t.Errorf("OutputAmount(screw) = %v, want 40", got)
	}
	if got := r.OutputAmount("scrap"); got != 5 {
		t.Errorf("OutputAmount(scrap) = %v, want 5", got)
	}
	if got := r.OutputAmount("other"); got != 0 {
		t.Errorf("OutputAmount(other) = %v, want 0", got)
	}
}

func TestItemName(t *testing.T) {
	c := Builtin()

	if got := c.ItemName("iron-plate"); got != "Iron Plate" {
		t.Errorf("ItemName(iron-plate) = %q, want %q", got, "Iron Plate")
	}
	// Unknown items fall back to the ID
	if got := c.ItemName("mystery"); got != "mystery" {
		t.Errorf("ItemName(mystery) = %q, want %q", got, "mystery")
	}
}

func TestBuiltin(t *testing.T) {
	c := Builtin()

	// Every recipe references known buildings and items
	for i, r := range c.Recipes {
		if _, ok := c.Building(r.Building); !ok {
			t.Errorf("recipe %d (%s): unknown building %q", i, r.Name, r.Building)
		}
		for _, out := range r.Outputs {
			if _, ok := c.Item(out.Item); !ok {
				t.Errorf("recipe %d (%s): unknown output item %q", i, r.Name, out.Item)
			}
		}
		for _, in := range r.Inputs {
			if _, ok := c.Item(in.Item); !ok {
				t.Errorf("recipe %d (%s): unknown input item %q", i, r.Name, in.Item)
			}
		}
	}

	// Every item except terminal outputs has at least one producing recipe
	for _, it := range c.Items {
		if len(c.RecipesFor(it.ID)) == 0 {
			t.Errorf("item %q has no producing recipe", it.ID)
		}
	}
}
