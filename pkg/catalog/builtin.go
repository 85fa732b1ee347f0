package catalog

// Builtin returns a small self-contained catalog covering a basic iron and
// copper chain. It is used by the CLI when no catalog file is given, and by
// tests and examples that need realistic recipe data without fixtures.
func Builtin() *Catalog {
	c := &Catalog{
		Items: []Item{
			{ID: "iron-ore", Name: "Iron Ore"},
			{ID: "iron-ingot", Name: "Iron Ingot"},
			{ID: "iron-plate", Name: "Iron Plate"},
			{ID: "iron-rod", Name: "Iron Rod"},
			{ID: "screw", Name: "Screw"},
			{ID: "copper-ore", Name: "Copper Ore"},
			{ID: "copper-ingot", Name: "Copper Ingot"},
			{ID: "wire", Name: "Wire"},
			{ID: "rotor", Name: "Rotor"},
		},
		Buildings: []Building{
			{ID: "miner", Name: "Miner Mk.1", Power: 5, Extractor: true},
			{ID: "smelter", Name: "Smelter", Power: 4},
			{ID: "constructor", Name: "Constructor", Power: 4},
			{ID: "assembler", Name: "Assembler", Power: 15},
		},
		Recipes: []Recipe{
			{
				Name:     "Iron Ore",
				Building: "miner",
				Outputs:  []Stack{{Item: "iron-ore", Amount: 60}},
			},
			{
				Name:     "Copper Ore",
				Building: "miner",
				Outputs:  []Stack{{Item: "copper-ore", Amount: 60}},
			},
			{
				Name:     "Iron Ingot",
				Building: "smelter",
				Outputs:  []Stack{{Item: "iron-ingot", Amount: 30}},
				Inputs:   []Stack{{Item: "iron-ore", Amount: 30}},
			},
			{
				Name:     "Copper Ingot",
				Building: "smelter",
				Outputs:  []Stack{{Item: "copper-ingot", Amount: 30}},
				Inputs:   []Stack{{Item: "copper-ore", Amount: 30}},
			},
			{
				Name:     "Iron Plate",
				Building: "constructor",
				Outputs:  []Stack{{Item: "iron-plate", Amount: 20}},
				Inputs:   []Stack{{Item: "iron-ingot", Amount: 30}},
			},
			{
				Name:     "Iron Rod",
				Building: "constructor",
				Outputs:  []Stack{{Item: "iron-rod", Amount: 15}},
				Inputs:   []Stack{{Item: "iron-ingot", Amount: 15}},
			},
			{
				Name:     "Screw",
				Building: "constructor",
				Outputs:  []Stack{{Item: "screw", Amount: 40}},
				Inputs:   []Stack{{Item: "iron-rod", Amount: 10}},
			},
			{
				Name:     "Wire",
				Building: "constructor",
				Outputs:  []Stack{{Item: "wire", Amount: 30}},
				Inputs:   []Stack{{Item: "copper-ingot", Amount: 15}},
			},
			{
				Name:     "Rotor",
				Building: "assembler",
				Outputs:  []Stack{{Item: "rotor", Amount: 4}},
				Inputs: []Stack{
					{Item: "iron-rod", Amount: 20},
					{Item: "screw", Amount: 100},
				},
			},
		},
	}

	// The builtin set is known-good; index cannot fail on it.
	if err := c.Reindex(); err != nil {
		panic(err)
	}
	return c
}
