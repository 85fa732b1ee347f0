package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/flowplan/flowplan/pkg/flow"
)

// MarshalJSON encodes a flow graph as indented JSON. The output is stable
// for a given graph: node and edge order follow the graph's slices, which
// the pipeline produces deterministically.
func MarshalJSON(g flow.Graph) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return data, nil
}

// WriteJSON encodes a flow graph as indented JSON to w.
func WriteJSON(w io.Writer, g flow.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadJSON decodes a flow graph from r.
func ReadJSON(r io.Reader) (flow.Graph, error) {
	var g flow.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return flow.Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}
