package jsonschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := Decode([]byte(`{"a": 1, "b": {"c": [true, "x", 2.5]}}`))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	fromYAML, err := Decode([]byte("a: 1\nb:\n  c: [true, x, 2.5]\n"))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("decoded trees differ (-json +yaml):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "- a\n- b\n", "{not json", "a: [unclosed"} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Errorf("Decode(%q) expected error", raw)
		}
	}
}

func TestDecodeValues_EmptyInput(t *testing.T) {
	values, err := DecodeValues(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if values == nil || len(values) != 0 {
		t.Fatalf("expected empty map, got %#v", values)
	}
}
