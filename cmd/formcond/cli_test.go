package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	html, err := execute(t, "render", "--source", "testdata/address.schema.json", "--set", "country=US")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `name="zipcode"`) || strings.Contains(html, `name="postal_code"`) {
		t.Fatalf("unexpected fields:\n%s", html)
	}
	if !strings.Contains(html, `value="US"`) {
		t.Fatalf("expected country prefilled:\n%s", html)
	}
}

func TestRenderCommandWritesOutputFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "form.html")
	stdout, err := execute(t, "render", "--source", "testdata/address.schema.json", "--output", target)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	written, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(written), `name="postal_code"`) {
		t.Fatalf("expected else branch in file:\n%s", written)
	}
}

func TestRenderCommandOpenAPIForm(t *testing.T) {
	_, err := execute(t, "render", "--source", "testdata/orders.openapi.yaml")
	if err == nil || !strings.Contains(err.Error(), "createOrder, createRefund") {
		t.Fatalf("expected form id error listing operations, got %v", err)
	}

	html, err := execute(t, "render", "--source", "testdata/orders.openapi.yaml", "--form", "createOrder", "--set", "delivery=shipping")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `name="address"`) {
		t.Fatalf("expected shipping address field:\n%s", html)
	}
}

func TestResolveCommand(t *testing.T) {
	stdout, err := execute(t, "resolve", "--source", "testdata/address.schema.json", "--data", "testdata/answers.yaml")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var got struct {
		Form      string `json:"form"`
		Effective struct {
			Properties map[string]any `json:"properties"`
		} `json:"effective"`
		Decisions []struct {
			Path    string   `json:"path"`
			Matched bool     `json:"matched"`
			Branch  string   `json:"branch"`
			Added   []string `json:"added"`
		} `json:"decisions"`
		Hidden []string       `json:"hidden"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}

	if got.Form != "address.edit" {
		t.Fatalf("form = %q", got.Form)
	}
	var props []string
	for key := range got.Effective.Properties {
		props = append(props, key)
	}
	if diff := cmp.Diff([]string{"country", "postal_code"}, props, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("effective properties (-want +got):\n%s", diff)
	}
	if len(got.Decisions) != 2 || got.Decisions[0].Branch != "else" || got.Decisions[0].Matched {
		t.Fatalf("unexpected decisions: %+v", got.Decisions)
	}
	if diff := cmp.Diff([]string{"postcode", "zipcode"}, got.Hidden); diff != "" {
		t.Fatalf("hidden (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"country": "France", "postal_code": "75001"}, got.Data); diff != "" {
		t.Fatalf("pruned data (-want +got):\n%s", diff)
	}
}

func TestValidateCommand(t *testing.T) {
	stdout, err := execute(t, "validate", "--source", "testdata/address.schema.json")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, `"valid": true`) {
		t.Fatalf("expected valid result:\n%s", stdout)
	}

	broken := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(broken, []byte(`{"type": "object", "properties": {"a": {"anyOf": []}}}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	stdout, err = execute(t, "validate", "--source", broken)
	if err == nil {
		t.Fatal("expected invalid schema to fail")
	}
	if !strings.Contains(stdout, `unsupported keyword \"anyOf\"`) {
		t.Fatalf("expected keyword issue:\n%s", stdout)
	}
}

func TestFillRejectsUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "fill", "--source", "testdata/address.schema.json", "--output-format", "xml")
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected output format error, got %v", err)
	}
}

func TestParseAssignment(t *testing.T) {
	cases := []struct {
		raw   string
		key   string
		value any
	}{
		{"country=US", "country", "US"},
		{"count=3", "count", float64(3)},
		{"gift=true", "gift", true},
		{"address.zip= 02134 ", "address.zip", " 02134 "},
		{"note=a=b", "note", "a=b"},
	}
	for _, tc := range cases {
		key, value, err := parseAssignment(tc.raw)
		if err != nil {
			t.Fatalf("parseAssignment(%q): %v", tc.raw, err)
		}
		if key != tc.key || !cmp.Equal(value, tc.value) {
			t.Errorf("parseAssignment(%q) = %q, %#v", tc.raw, key, value)
		}
	}
	if _, _, err := parseAssignment("=x"); err == nil {
		t.Fatal("expected error for empty key")
	}
}
