package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToJSONSchema(t *testing.T) {
	minLen := 5
	node := Schema{
		Type:     "object",
		Required: []string{"zipcode", "country"},
		Properties: map[string]Schema{
			"country": {Type: "string", Enum: []any{"US", "FR"}},
			"zipcode": {Type: "string", Pattern: "^[0-9]{5}$", MinLength: &minLen},
			"flag":    {Type: "string", Const: "", HasConst: true},
		},
		If:         &Schema{Properties: map[string]Schema{"country": {Const: "US", HasConst: true}}},
		Extensions: map[string]any{"x-formgen": map[string]any{"layout": "grid"}},
	}

	want := map[string]any{
		"type":     "object",
		"required": []string{"country", "zipcode"},
		"properties": map[string]any{
			"country": map[string]any{"type": "string", "enum": []any{"US", "FR"}},
			"zipcode": map[string]any{"type": "string", "pattern": "^[0-9]{5}$", "minLength": 5},
			"flag":    map[string]any{"type": "string", "const": ""},
		},
		"if": map[string]any{
			"properties": map[string]any{"country": map[string]any{"const": "US"}},
		},
		"x-formgen": map[string]any{"layout": "grid"},
	}
	if diff := cmp.Diff(want, node.ToJSONSchema()); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"zipcode", "country"}, node.Required); diff != "" {
		t.Fatalf("export mutated input (-want +got):\n%s", diff)
	}
}
