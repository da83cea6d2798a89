package validation

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgjsonschema "github.com/goliatone/go-formcond/pkg/jsonschema"
)

func validate(t *testing.T, raw string) SchemaValidationResult {
	t.Helper()
	return ValidateSchema(context.Background(), pkgjsonschema.SourceFromFS("schema.json"), []byte(raw), Options{})
}

func TestValidateSchema_Valid(t *testing.T) {
	result := validate(t, `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "address",
  "type": "object",
  "properties": {"country": {"type": "string"}},
  "if": {"properties": {"country": {"const": "US"}}},
  "then": {"properties": {"zipcode": {"type": "string"}}},
  "else": {"properties": {"postal_code": {"type": "string"}}}
}`)
	if !result.Valid || len(result.Issues) != 0 {
		t.Fatalf("expected clean schema, got %#v", result)
	}
}

func TestValidateSchema_UnsupportedKeyword(t *testing.T) {
	result := validate(t, `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "oneOf": [{"minLength": 1}]}
  }
}`)
	if result.Valid {
		t.Fatal("expected schema to be invalid")
	}
	want := []SchemaIssue{{
		Severity: SeverityError,
		Path:     "#/properties/title",
		Field:    "title",
		Message:  `unsupported keyword "oneOf"`,
	}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSchema_FieldPath(t *testing.T) {
	result := validate(t, `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": "oops"}
  }
}`)
	if result.Valid {
		t.Fatal("expected schema to be invalid")
	}
	if got := result.Issues[0].Field; got != "title" {
		t.Fatalf("expected field path title, got %q", got)
	}
}

func TestValidateSchema_UnsupportedDialect(t *testing.T) {
	result := validate(t, `{"$schema": "http://json-schema.org/draft-04/schema#", "type": "object"}`)
	if result.Valid {
		t.Fatal("expected draft-04 to be rejected")
	}
}

func TestValidateSchema_ConditionalLint(t *testing.T) {
	result := validate(t, `{
  "type": "object",
  "properties": {
    "country": {"type": "string"},
    "shipping": {
      "type": "object",
      "properties": {"method": {"type": "string"}},
      "then": {"properties": {"tracking": {"type": "string"}}}
    }
  },
  "allOf": [
    {"if": {"properties": {"country": {"const": "UK"}}}},
    {
      "if": {"properties": {"region": {"const": "north"}}},
      "then": {"properties": {"depot": {"type": "string"}}}
    }
  ]
}`)
	if !result.Valid {
		t.Fatalf("warnings must not invalidate the schema: %#v", result.Issues)
	}
	want := []SchemaIssue{
		{Severity: SeverityWarning, Form: "default", Path: "#/properties/shipping/then", Field: "shipping", Message: "then without if"},
		{Severity: SeverityWarning, Form: "default", Path: "#/allOf/0/if", Field: "", Message: "if has neither then nor else"},
		{Severity: SeverityWarning, Form: "default", Path: "#/allOf/1/if/properties/region", Field: "region", Message: `if constrains undeclared property "region"`},
	}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if got := len(result.Warnings()); got != 3 {
		t.Fatalf("expected 3 warnings, got %d", got)
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	cases := map[string]string{
		"":                                "",
		"#":                               "",
		"#/properties/a~1b/items":         "a/b.items",
		"#/$defs/Address/properties/zip":  "zip",
		"#/allOf/2/then/properties/state": "state",
	}
	for pointer, want := range cases {
		if got := fieldPathFromPointer(pointer); got != want {
			t.Errorf("fieldPathFromPointer(%q) = %q, want %q", pointer, got, want)
		}
	}
}
