package conditional

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcond/pkg/schema"
)

func TestExplain_RecordsEveryTriple(t *testing.T) {
	got := Explain(addressSchemaWithAllOf(), map[string]any{"country": "United Kingdom"})
	want := []Decision{
		{Path: "#/allOf/0", Matched: false, Branch: BranchNone},
		{Path: "#/allOf/1", Matched: true, Branch: BranchThen, Added: []string{"postcode"}},
		{Path: "#/allOf/2", Matched: false, Branch: BranchNone},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decisions mismatch (-want +got):\n%s", diff)
	}
}

func TestExplain_ElseBranch(t *testing.T) {
	got := Explain(addressSchema(), map[string]any{})
	want := []Decision{{Path: "#", Matched: false, Branch: BranchElse, Added: []string{"postal_code"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decisions mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_MatchesResolve(t *testing.T) {
	data := map[string]any{"country": "France"}
	res := Evaluate(addressSchemaWithAllOf(), data)
	if diff := cmp.Diff(Resolve(addressSchemaWithAllOf(), data), res.Schema); diff != "" {
		t.Fatalf("evaluate schema differs from resolve (-resolve +evaluate):\n%s", diff)
	}
}

func TestPrune_DropsHiddenAnswers(t *testing.T) {
	data := map[string]any{
		"country":     "France",
		"zipcode":     "90210",
		"postal_code": "75001",
	}
	effective := Resolve(addressSchema(), data)

	got := Prune(effective, data)
	want := map[string]any{"country": "France", "postal_code": "75001"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prune mismatch (-want +got):\n%s", diff)
	}
	if _, ok := data["zipcode"]; !ok {
		t.Fatalf("prune must not mutate its input")
	}
}

func TestPrune_NestedAndUnconstrained(t *testing.T) {
	node := schema.Schema{Properties: map[string]schema.Schema{
		"address": addressSchema(),
		"meta":    {Type: "object"},
	}}
	data := map[string]any{
		"address": map[string]any{"country": "Canada", "zipcode": "x", "postal_code": "K1A"},
		"meta":    map[string]any{"anything": true},
		"stray":   1,
	}

	got := Prune(Resolve(node, data), data)
	want := map[string]any{
		"address": map[string]any{"country": "Canada", "postal_code": "K1A"},
		"meta":    map[string]any{"anything": true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prune mismatch (-want +got):\n%s", diff)
	}
	if Prune(schema.Schema{}, nil) != nil {
		t.Fatalf("expected nil for nil data")
	}
}

func TestVisibleAndHidden(t *testing.T) {
	node := schema.Schema{Properties: map[string]schema.Schema{"address": addressSchema()}}
	data := map[string]any{"address": map[string]any{"country": "United States of America"}}

	if !Visible(node, data, "address.zipcode") {
		t.Fatalf("expected address.zipcode to be visible")
	}
	if Visible(node, data, "address.postal_code") {
		t.Fatalf("expected address.postal_code to be hidden")
	}
	if Visible(node, data, "") {
		t.Fatalf("expected empty path to be invisible")
	}

	if diff := cmp.Diff([]string{"address.postal_code"}, Hidden(node, data)); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
}

func TestHidden_ArrayItems(t *testing.T) {
	address := addressSchema()
	node := schema.Schema{Properties: map[string]schema.Schema{
		"addresses": {Type: "array", Items: &address},
		"tags":      {Type: "array", Items: &schema.Schema{Type: "string"}},
	}}

	got := Hidden(node, map[string]any{"addresses": []any{}})
	if diff := cmp.Diff([]string{"addresses[].zipcode"}, got); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if !hasPath(Resolve(node, nil), "addresses[].postal_code") {
		t.Fatal("expected item path to resolve through items")
	}
	if hasPath(Resolve(node, nil), "tags[].x") {
		t.Fatal("scalar items declare no properties")
	}
}
