package orchestrator_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formcond/pkg/model"
	"github.com/goliatone/go-formcond/pkg/orchestrator"
	"github.com/goliatone/go-formcond/pkg/render"
	"github.com/goliatone/go-formcond/pkg/schema"
)

func fileRequest(name string, values map[string]any) orchestrator.Request {
	return orchestrator.Request{
		Source:        schema.SourceFromFile(filepath.Join("testdata", name)),
		RenderOptions: render.RenderOptions{Values: values},
	}
}

func TestGenerateAddressScenarios(t *testing.T) {
	cases := []struct {
		name    string
		values  map[string]any
		present []string
		absent  []string
	}{
		{"us", map[string]any{"country": "US"}, []string{`name="zipcode"`}, []string{`name="postal_code"`, `name="postcode"`}},
		{"france", map[string]any{"country": "France"}, []string{`name="postal_code"`}, []string{`name="zipcode"`, `name="postcode"`}},
		{"uk", map[string]any{"country": "UK"}, []string{`name="postal_code"`, `name="postcode"`}, []string{`name="zipcode"`}},
		{"empty", nil, []string{`name="postal_code"`}, []string{`name="zipcode"`, `name="postcode"`}},
	}

	orch := orchestrator.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := orch.Generate(context.Background(), fileRequest("address.schema.json", tc.values))
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			html := string(output)
			if !strings.Contains(html, `<input label="country" name="country"`) {
				t.Errorf("expected country input\n%s", html)
			}
			for _, want := range tc.present {
				if !strings.Contains(html, want) {
					t.Errorf("expected %s\n%s", want, html)
				}
			}
			for _, unwanted := range tc.absent {
				if strings.Contains(html, unwanted) {
					t.Errorf("did not expect %s\n%s", unwanted, html)
				}
			}
		})
	}
}

func TestResolveReportsDecisions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	orch := orchestrator.New(orchestrator.WithLogger(zap.New(core)))

	resolution, err := orch.Resolve(context.Background(), fileRequest("address.schema.json", map[string]any{
		"country":     "US",
		"postal_code": "stale",
		"zipcode":     "10001",
	}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolution.Form.ID != "address.edit" {
		t.Fatalf("unexpected form id %q", resolution.Form.ID)
	}
	if diff := cmp.Diff([]string{"country", "zipcode"}, resolution.Effective.PropertyNames()); diff != "" {
		t.Fatalf("effective properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"country", "zipcode"}, resolution.Effective.Required); diff != "" {
		t.Fatalf("effective required mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"postal_code", "postcode"}, resolution.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"country": "US", "zipcode": "10001"}, resolution.Data); diff != "" {
		t.Fatalf("pruned data mismatch (-want +got):\n%s", diff)
	}
	if len(resolution.Decisions) != 2 {
		t.Fatalf("expected two decisions, got %+v", resolution.Decisions)
	}
	if got := logs.FilterMessage("conditional evaluated").Len(); got != 2 {
		t.Fatalf("expected two decision logs, got %d", got)
	}
	if got := logs.FilterMessage("form selected").Len(); got != 1 {
		t.Fatalf("expected one form selection log, got %d", got)
	}
}

func TestGenerateOpenAPIRequiresFormID(t *testing.T) {
	orch := orchestrator.New()
	req := fileRequest("orders.openapi.yaml", map[string]any{"delivery": "shipping"})

	if _, err := orch.Generate(context.Background(), req); err == nil || !strings.Contains(err.Error(), "createOrder, createRefund") {
		t.Fatalf("expected form id error listing operations, got %v", err)
	}

	req.FormID = "createOrder"
	output, err := orch.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(output)
	for _, want := range []string{`action="/orders"`, `name="address"`, `<option value="shipping" selected>`} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %s\n%s", want, html)
		}
	}
}

func TestGenerateFromDocumentWithExplicitFormat(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "address.schema.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc := schema.MustNewDocument(schema.SourceFromFile("address.schema.json"), raw)

	orch := orchestrator.New()
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Document: &doc, Format: "jsonschema"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Document: &doc, Format: "graphql"}); err == nil {
		t.Fatal("expected unknown format error")
	}
	if _, err := orch.Generate(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatal("expected error without source or document")
	}
}

type recordingRenderer struct {
	forms   []model.FormModel
	options render.RenderOptions
	values  []map[string]any
}

func (r *recordingRenderer) Name() string        { return "recording" }
func (r *recordingRenderer) ContentType() string { return "text/plain" }

// Render plays an interactive session: it answers the country and refreshes.
func (r *recordingRenderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	r.forms = append(r.forms, form)
	r.options = options
	for _, values := range r.values {
		refreshed, err := options.Refresh(ctx, values)
		if err != nil {
			return nil, err
		}
		r.forms = append(r.forms, refreshed)
	}
	return []byte("ok"), nil
}

func TestGenerateRefreshAppliesPipeline(t *testing.T) {
	renderer := &recordingRenderer{values: []map[string]any{{"country": "US"}}}
	decorated := 0
	orch := orchestrator.New(
		orchestrator.WithRenderers(renderer),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithSchemaTransformer(orchestrator.TransformerFunc(func(_ context.Context, form *model.FormModel) error {
			form.Metadata = map[string]string{"patched": "true"}
			return nil
		})),
		orchestrator.WithUIDecorators(model.DecoratorFunc(func(*model.FormModel) error {
			decorated++
			return nil
		})),
	)

	if _, err := orch.Generate(context.Background(), fileRequest("address.schema.json", nil)); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(renderer.forms) != 2 {
		t.Fatalf("expected initial and refreshed forms, got %d", len(renderer.forms))
	}
	if diff := cmp.Diff([]string{"country", "postal_code"}, renderer.forms[0].Paths()); diff != "" {
		t.Fatalf("initial fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"country", "zipcode"}, renderer.forms[1].Paths()); diff != "" {
		t.Fatalf("refreshed fields mismatch (-want +got):\n%s", diff)
	}
	for _, form := range renderer.forms {
		if form.Metadata["patched"] != "true" {
			t.Fatalf("transformer not applied: %+v", form.Metadata)
		}
	}
	if decorated != 2 {
		t.Fatalf("expected decorators on every build, got %d", decorated)
	}
}

func TestJSONPresetTransformer(t *testing.T) {
	transformer, err := orchestrator.NewJSONPresetTransformer([]byte(`{
		"uiHints": {"submitLabel": "Ship it"},
		"fields": {
			"zipcode": {"label": "ZIP", "placeholder": "10001"},
			"lines[].sku": {"description": "Stock keeping unit"},
			"postal_code": {"label": "Postal code"}
		}
	}`))
	if err != nil {
		t.Fatalf("new transformer: %v", err)
	}

	form := model.FormModel{
		Fields: []model.Field{
			{Name: "zipcode", Path: "zipcode", Label: "zipcode"},
			{
				Name: "lines",
				Path: "lines",
				Type: model.FieldTypeArray,
				Items: &model.Field{
					Name:   "lines",
					Path:   "lines[]",
					Type:   model.FieldTypeObject,
					Nested: []model.Field{{Name: "sku", Path: "lines[].sku"}},
				},
			},
		},
	}
	if err := transformer.Transform(context.Background(), &form); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if form.UIHints["submitLabel"] != "Ship it" {
		t.Fatalf("form hints not applied: %+v", form.UIHints)
	}
	if form.Fields[0].Label != "ZIP" || form.Fields[0].UIHints["placeholder"] != "10001" {
		t.Fatalf("field patch not applied: %+v", form.Fields[0])
	}
	if got := form.Fields[1].Items.Nested[0].Description; got != "Stock keeping unit" {
		t.Fatalf("item patch not applied: %q", got)
	}

	if _, err := orchestrator.NewJSONPresetTransformer(nil); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestAdapterRegistry(t *testing.T) {
	registry := orchestrator.NewAdapterRegistry()
	if _, err := registry.Get("jsonschema"); err == nil {
		t.Fatal("expected missing adapter error")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatal("expected nil adapter error")
	}
	if got := registry.List(); len(got) != 0 {
		t.Fatalf("expected empty registry, got %v", got)
	}
}
