package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcond/pkg/render"
)

func TestValuePaths(t *testing.T) {
	values := map[string]any{"country": "US"}
	render.SetValue(values, "address.zipcode", "10001")
	render.SetValue(values, "country.code", "US")

	want := map[string]any{
		"country": map[string]any{"code": "US"},
		"address": map[string]any{"zipcode": "10001"},
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	if got, ok := render.ValueAt(values, "address.zipcode"); !ok || got != "10001" {
		t.Fatalf("ValueAt = %v, %v", got, ok)
	}
	if _, ok := render.ValueAt(values, "address.zipcode.extra"); ok {
		t.Fatal("expected lookup through a scalar to fail")
	}
	if _, ok := render.ValueAt(values, "missing"); ok {
		t.Fatal("expected missing key to fail")
	}
}

func TestCloneValues(t *testing.T) {
	original := map[string]any{
		"address": map[string]any{"zipcode": "10001"},
		"tags":    []any{"a"},
	}
	clone := render.CloneValues(original)
	render.SetValue(clone, "address.zipcode", "changed")
	clone["tags"].([]any)[0] = "b"

	if original["address"].(map[string]any)["zipcode"] != "10001" {
		t.Fatal("nested map shared with clone")
	}
	if original["tags"].([]any)[0] != "a" {
		t.Fatal("slice shared with clone")
	}
	if render.CloneValues(nil) == nil {
		t.Fatal("expected empty map for nil input")
	}
}
