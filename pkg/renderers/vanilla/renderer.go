package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formcond/pkg/model"
	"github.com/goliatone/go-formcond/pkg/render"
	rendertemplate "github.com/goliatone/go-formcond/pkg/render/template"
	"github.com/goliatone/go-formcond/pkg/render/template/pongo"
	"github.com/goliatone/go-formcond/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formcond/pkg/widgets"
)

const defaultSubmitLabel = "Submit"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	widgets          *widgets.Registry
	overrides        map[string]string
	policy           *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the built-in components.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithWidgetRegistry replaces the matchers that pick a component for fields
// without an override.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithComponentOverrides forces a component per field path or name.
func WithComponentOverrides(overrides map[string]string) Option {
	return func(cfg *config) {
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]string, len(overrides))
		}
		for key, value := range overrides {
			cfg.overrides[key] = value
		}
	}
}

// WithSanitizer replaces the policy applied to descriptions (bluemonday UGC
// policy by default).
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	widgets   *widgets.Registry
	overrides map[string]string
	policy    *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		registry:  cfg.registry,
		widgets:   cfg.widgets,
		overrides: cfg.overrides,
		policy:    cfg.policy,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML form. Controls are prefilled from
// options.Values and annotated with options.Errors.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mapping := render.MapErrors(form, options.Errors)
	fields := &componentRenderer{
		templates: r.templates,
		registry:  r.registry,
		widgets:   r.widgets,
		overrides: r.overrides,
		policy:    r.policy,
		values:    options.Values,
		errors:    mapping.Fields,
	}

	var body strings.Builder
	for _, field := range form.Fields {
		markup, err := fields.render(field)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		body.WriteString(markup)
	}

	method := options.Method
	if method == "" {
		method = form.Method
	}
	formMethod, override := render.SubmissionMethod(method)

	hidden := make([]map[string]any, 0, len(options.Hidden))
	for _, field := range render.SortedHiddenFields(options.Hidden) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	submitLabel := form.UIHints["submitLabel"]
	if submitLabel == "" {
		submitLabel = defaultSubmitLabel
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form":          form,
		"method":        formMethod,
		"override":      override,
		"hidden_fields": hidden,
		"description":   fields.sanitize(form.Description),
		"form_errors":   mapping.Form,
		"fields":        body.String(),
		"submit_label":  submitLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
