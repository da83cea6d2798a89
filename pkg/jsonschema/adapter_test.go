package jsonschema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcond/pkg/schema"
)

type failingLoader struct{}

func (failingLoader) Load(context.Context, Source) (Document, error) {
	return Document{}, errors.New("unexpected loader call")
}

const addressSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "com.example.address",
  "title": "Address",
  "type": "object",
  "properties": {
    "country": {"type": "string", "enum": ["US", "France", "UK"]}
  },
  "if": {"properties": {"country": {"const": "US"}}},
  "then": {"properties": {"zipcode": {"type": "string"}}, "required": ["zipcode"]},
  "else": {"properties": {"postal_code": {"type": "string"}}}
}`

func normalize(t *testing.T, raw string, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	t.Helper()
	doc := MustNewDocument(SourceFromFS("root.json"), []byte(raw))
	return NewAdapter(failingLoader{}).Normalize(context.Background(), doc, opts)
}

func TestAdapterDetect(t *testing.T) {
	adapter := NewAdapter(failingLoader{})
	cases := map[string]bool{
		addressSchema:                         true,
		"type: object\nproperties: {a: {}}\n": true,
		`{"openapi":"3.0.3","paths":{}}`:      false,
		`{"swagger":"2.0"}`:                   false,
		`{"name":"not a schema"}`:             false,
		``:                                    false,
		`[1,2,3]`:                             false,
	}
	for raw, want := range cases {
		if got := adapter.Detect(SourceFromFS("x"), []byte(raw)); got != want {
			t.Errorf("Detect(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestAdapterNormalize_ConditionalDocument(t *testing.T) {
	ir, err := normalize(t, addressSchema, schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	form, ok := ir.Form("com.example.address.edit")
	if !ok {
		t.Fatalf("expected form com.example.address.edit, got %v", ir.FormRefs())
	}
	if form.Method != "POST" || form.Endpoint != "/" || form.Summary != "Address" {
		t.Fatalf("unexpected form metadata: %+v", form)
	}

	root := form.Schema
	if root.If == nil || root.Then == nil || root.Else == nil {
		t.Fatalf("expected conditional triple to survive normalization")
	}
	country := root.If.Properties["country"]
	if !country.HasConst || country.Const != "US" {
		t.Fatalf("expected if.country const US, got %+v", country)
	}
	if diff := cmp.Diff([]string{"zipcode"}, root.Then.Required); diff != "" {
		t.Fatalf("then.required mismatch (-want +got):\n%s", diff)
	}
	if _, ok := root.Else.Properties["postal_code"]; !ok {
		t.Fatalf("expected else.postal_code")
	}
}

func TestAdapterNormalize_YAMLDocument(t *testing.T) {
	raw := `
title: Shipping
type: object
properties:
  method:
    type: string
    enum: [post, courier]
allOf:
  - if:
      properties:
        method: {const: courier}
    then:
      properties:
        phone: {type: string, minLength: 7}
`
	ir, err := normalize(t, raw, schema.NormalizeOptions{ContentTypeSlug: "shipping"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	form, ok := ir.Form("shipping.edit")
	if !ok {
		t.Fatalf("expected slug derived form, got %v", ir.FormRefs())
	}
	if form.Endpoint != "/shipping" {
		t.Fatalf("expected endpoint /shipping, got %q", form.Endpoint)
	}
	phone := form.Schema.AllOf[0].Then.Properties["phone"]
	if phone.MinLength == nil || *phone.MinLength != 7 {
		t.Fatalf("expected phone minLength 7, got %+v", phone)
	}
}

func TestAdapterNormalize_DefaultFormWithoutMetadata(t *testing.T) {
	ir, err := normalize(t, `{"type":"object","properties":{"a":{"type":"string"}}}`, schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if _, ok := ir.Form(DefaultFormID); !ok {
		t.Fatalf("expected form %q, got %v", DefaultFormID, ir.FormRefs())
	}
}

func TestAdapterNormalize_DeclaredForms(t *testing.T) {
	raw := `{
  "type": "object",
  "x-formgen": {"forms": [
    {"id": "address.create", "title": "Create"},
    {"id": "address.edit", "summary": "Edit address"}
  ]}
}`
	ir, err := normalize(t, raw, schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got := make([]string, 0)
	for _, ref := range ir.FormRefs() {
		got = append(got, ref.ID)
	}
	if diff := cmp.Diff([]string{"address.create", "address.edit"}, got); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}

	filtered, err := normalize(t, raw, schema.NormalizeOptions{FormID: "address.edit"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	form, _ := filtered.Form("address.edit")
	if len(filtered.Forms) != 1 || form.Summary != "Edit address" {
		t.Fatalf("unexpected filtered forms: %+v", filtered.Forms)
	}
}

func TestAdapterNormalize_Errors(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		opts    schema.NormalizeOptions
		wantErr string
	}{
		{"draft 04", `{"$schema":"http://json-schema.org/draft-04/schema#"}`, schema.NormalizeOptions{}, "unsupported $schema"},
		{"anyOf", `{"anyOf":[]}`, schema.NormalizeOptions{}, `unsupported keyword "anyOf" at #`},
		{"nested keyword", `{"properties":{"a":{"if":{"properties":{"b":{"oneOf":[]}}}}}}`, schema.NormalizeOptions{}, "#/properties/a/if/properties/b"},
		{"false schema", `{"properties":{"a":false}}`, schema.NormalizeOptions{}, "false schema"},
		{"bad required", `{"required":"a"}`, schema.NormalizeOptions{}, "required must be an array"},
		{"missing form", `{"$id":"x"}`, schema.NormalizeOptions{FormID: "missing"}, `form "missing" not found`},
		{"tuple items", `{"type":"array","items":[{"type":"string"}]}`, schema.NormalizeOptions{}, "tuple items"},
		{"bad type", `{"type":"date"}`, schema.NormalizeOptions{}, `unsupported type "date"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalize(t, tc.raw, tc.opts)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNormalizeSchema_Keywords(t *testing.T) {
	payload, err := Decode([]byte(`{
  "type": ["null", "integer"],
  "title": " Age ",
  "minimum": 0,
  "maximum": 130,
  "default": 30,
  "const": null,
  "readOnly": false,
  "x-formgen-widget": "slider"
}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := NormalizeSchema(payload, "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	min, max := 0.0, 130.0
	want := schema.Schema{
		Type:       "integer",
		Title:      "Age",
		Minimum:    &min,
		Maximum:    &max,
		Default:    float64(30),
		HasConst:   true,
		Extensions: map[string]any{"x-formgen-widget": "slider"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeSchema_TrueSubschemaIsEmpty(t *testing.T) {
	got, err := NormalizeSchema(map[string]any{
		"properties": map[string]any{"anything": true},
	}, "#")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if diff := cmp.Diff(schema.Schema{}, got.Properties["anything"]); diff != "" {
		t.Fatalf("expected empty schema (-want +got):\n%s", diff)
	}
}
