package vanilla_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formcond/pkg/model"
	"github.com/goliatone/go-formcond/pkg/render"
	"github.com/goliatone/go-formcond/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcond/pkg/testsupport"
	"github.com/goliatone/go-formcond/pkg/widgets"
)

func newRenderer(t *testing.T, options ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderHTML(t *testing.T, renderer *vanilla.Renderer, form model.FormModel, options render.RenderOptions) string {
	t.Helper()
	output, err := renderer.Render(context.Background(), form, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return testsupport.NormalizeHTML(string(output))
}

func usAddressForm() model.FormModel {
	return model.FormModel{
		ID:       "address",
		Endpoint: "/address",
		Method:   "POST",
		Summary:  "Shipping address",
		Fields: []model.Field{
			{Name: "country", Path: "country", Type: model.FieldTypeString, Required: true, Label: "country"},
			{
				Name:        "zipcode",
				Path:        "zipcode",
				Type:        model.FieldTypeString,
				Label:       "ZIP code",
				Description: `Five <b onclick="steal()">digits</b>`,
				Validations: []model.ValidationRule{{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "^[0-9]{5}$"}}},
			},
		},
	}
}

func TestRendererGolden(t *testing.T) {
	renderer := newRenderer(t)
	output, err := renderer.Render(context.Background(), usAddressForm(), render.RenderOptions{
		Values: map[string]any{"country": "US", "zipcode": "10001"},
		Errors: map[string][]string{"/zipcode": {"Invalid zipcode"}},
		Hidden: map[string]string{"_csrf": "token"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	goldenPath := filepath.Join("testdata", "address_us.golden.html")
	if testsupport.WriteMaybeGolden(t, goldenPath, output) {
		return
	}
	want := testsupport.NormalizeHTML(testsupport.MustReadGoldenString(t, goldenPath))
	if diff := testsupport.CompareGolden(want, testsupport.NormalizeHTML(string(output))); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
}

func TestRendererControls(t *testing.T) {
	form := model.FormModel{
		ID:     "profile",
		Method: "PATCH",
		Fields: []model.Field{
			{Name: "newsletter", Path: "newsletter", Type: model.FieldTypeBoolean, Label: "newsletter"},
			{Name: "plan", Path: "plan", Type: model.FieldTypeString, Label: "plan", Enum: []any{"free", "pro"}},
			{Name: "age", Path: "age", Type: model.FieldTypeInteger, Label: "age"},
			{
				Name:  "address",
				Path:  "address",
				Type:  model.FieldTypeObject,
				Label: "address",
				Nested: []model.Field{
					{Name: "street", Path: "address.street", Type: model.FieldTypeString, Label: "street"},
				},
			},
			{
				Name:  "tags",
				Path:  "tags",
				Type:  model.FieldTypeArray,
				Label: "tags",
				Items: &model.Field{Name: "tags", Path: "tags[]", Type: model.FieldTypeString},
			},
		},
	}

	html := renderHTML(t, newRenderer(t), form, render.RenderOptions{
		Values: map[string]any{
			"newsletter": true,
			"plan":       "pro",
			"age":        float64(42),
			"address":    map[string]any{"street": `Main <St>`},
			"tags":       []any{"a", "b"},
		},
	})

	expectations := []string{
		`<input type="hidden" name="_method" value="PATCH">`,
		`method="post"`,
		`<input label="newsletter" name="newsletter" type="checkbox" id="fc-newsletter" value="true" checked>`,
		`<option value="pro" selected>pro</option>`,
		`<option value=""></option>`,
		`<input label="age" name="age" type="number" id="fc-age" value="42" step="1">`,
		`<fieldset label="address" name="address" id="fc-address" class="fc-group"><legend>address</legend>`,
		`name="address.street" type="text" id="fc-address-street" value="Main &lt;St&gt;"`,
		`<textarea label="tags" name="tags" id="fc-tags" data-array="true">a`,
	}
	for _, want := range expectations {
		if !strings.Contains(html, want) {
			t.Errorf("expected output to contain %s\n%s", want, html)
		}
	}
	if strings.Contains(html, `<label for="fc-address">`) {
		t.Errorf("group fields must not render a label element\n%s", html)
	}
}

func TestRendererFormErrorsAndOverrides(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithComponentOverrides(map[string]string{"bio": "textarea"}))
	form := model.FormModel{
		ID:      "profile",
		Method:  "GET",
		UIHints: map[string]string{"submitLabel": "Search"},
		Fields: []model.Field{
			{Name: "bio", Path: "bio", Type: model.FieldTypeString, Label: "bio"},
		},
	}

	html := renderHTML(t, renderer, form, render.RenderOptions{
		Errors: map[string][]string{"non_field_errors": {"Try again"}},
	})

	for _, want := range []string{
		`method="get"`,
		`<div class="fc-form-errors" role="alert"><p class="fc-error">Try again</p></div>`,
		`<textarea label="bio" name="bio" id="fc-bio"></textarea>`,
		`<button type="submit">Search</button>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected output to contain %s\n%s", want, html)
		}
	}
	if strings.Contains(html, `name="_method"`) {
		t.Errorf("GET forms need no method override\n%s", html)
	}
}

func TestRendererUnknownComponent(t *testing.T) {
	form := model.FormModel{
		ID: "profile",
		Fields: []model.Field{
			{Name: "bio", Path: "bio", Type: model.FieldTypeString, UIHints: map[string]string{"widget": "markdown"}},
		},
	}
	if _, err := newRenderer(t).Render(context.Background(), form, render.RenderOptions{}); err == nil {
		t.Fatal("expected error for unregistered component")
	}
}

func TestRendererWidgetRegistry(t *testing.T) {
	form := model.FormModel{
		ID: "profile",
		Fields: []model.Field{
			{Name: "bio", Path: "bio", Label: "bio", Type: model.FieldTypeString, Format: "markdown"},
			{Name: "nickname", Path: "nickname", Label: "nickname", Type: model.FieldTypeString},
		},
	}
	html := renderHTML(t, newRenderer(t), form, render.RenderOptions{})
	if !strings.Contains(html, `<textarea label="bio" name="bio"`) {
		t.Fatalf("expected markdown format to render a textarea\n%s", html)
	}

	custom := &widgets.Registry{}
	custom.Register(widgets.WidgetTextarea, 1, func(field model.Field) bool { return field.Name == "nickname" })
	html = renderHTML(t, newRenderer(t, vanilla.WithWidgetRegistry(custom)), form, render.RenderOptions{})
	if !strings.Contains(html, `<textarea label="nickname" name="nickname"`) {
		t.Errorf("expected custom matcher to pick a textarea\n%s", html)
	}
	if !strings.Contains(html, `<input label="bio" name="bio"`) {
		t.Errorf("expected unmatched fields to fall back to input\n%s", html)
	}
}

func TestRendererMetadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "vanilla" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}
