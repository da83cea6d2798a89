package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	jsonloader "github.com/goliatone/go-formcond/internal/jsonschema/loader"
	openapiparser "github.com/goliatone/go-formcond/internal/openapi/parser"
	"github.com/goliatone/go-formcond/pkg/conditional"
	"github.com/goliatone/go-formcond/pkg/jsonschema"
	"github.com/goliatone/go-formcond/pkg/model"
	pkgopenapi "github.com/goliatone/go-formcond/pkg/openapi"
	"github.com/goliatone/go-formcond/pkg/render"
	"github.com/goliatone/go-formcond/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcond/pkg/schema"
)

const (
	defaultRendererName = "vanilla"
	defaultAdapterName  = jsonschema.DefaultAdapterName
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader replaces the document loader shared by the built-in adapters.
func WithLoader(loader jsonschema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithResolveOptions sets the $ref guardrails of the built-in adapters.
func WithResolveOptions(options jsonschema.ResolveOptions) Option {
	return func(o *Orchestrator) {
		o.refOptions = options
	}
}

// WithAdapterRegistry replaces the built-in adapters.
func WithAdapterRegistry(registry *AdapterRegistry) Option {
	return func(o *Orchestrator) {
		o.adapters = registry
	}
}

// WithDefaultAdapter names the adapter used when detection finds no match.
func WithDefaultAdapter(name string) Option {
	return func(o *Orchestrator) {
		o.defaultAdapter = name
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithRenderers registers extra renderers next to the default vanilla one.
func WithRenderers(renderers ...render.Renderer) Option {
	return func(o *Orchestrator) {
		o.extraRenderers = append(o.extraRenderers, renderers...)
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that runs on every built form
// model before decorators.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithUIDecorators registers decorators that run against every built form
// model before rendering.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithLogger enables debug logs of adapter selection and conditional
// decisions. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from schema document to rendered
// output.
type Orchestrator struct {
	loader          jsonschema.Loader
	parser          pkgopenapi.Parser
	refOptions      jsonschema.ResolveOptions
	adapters        *AdapterRegistry
	defaultAdapter  string
	builder         model.Builder
	registry        *render.Registry
	extraRenderers  []render.Renderer
	defaultRenderer string
	transformer     Transformer
	decorators      []model.Decorator
	logger          *zap.Logger
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		defaultAdapter:  defaultAdapterName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one form generation.
type Request struct {
	// Source identifies where the schema document lives. Optional when
	// Document is supplied.
	Source schema.Source

	// Document bypasses the loader when callers already hold the bytes.
	Document *schema.Document

	// Format names the adapter ("jsonschema", "openapi"). Empty means detect.
	Format string

	// FormID selects a form when the document declares several (OpenAPI
	// operation ids, x-formgen.forms entries).
	FormID string

	// Slug feeds form id and endpoint derivation for JSON Schema documents.
	Slug string

	// Renderer names the renderer to use; empty selects the default.
	Renderer string

	// RenderOptions carry the form data conditionals are resolved against
	// (Values) plus errors and hidden inputs. Generate fills Refresh when it
	// is nil.
	RenderOptions render.RenderOptions
}

// Resolution is the outcome of resolving a form's conditionals against data.
type Resolution struct {
	Form      schema.Form            `json:"form"`
	Effective schema.Schema          `json:"effective"`
	Decisions []conditional.Decision `json:"decisions,omitempty"`
	// Hidden lists field paths declared by some branch but absent for this
	// data.
	Hidden []string `json:"hidden,omitempty"`
	// Data is the input data restricted to the effective schema.
	Data map[string]any `json:"data,omitempty"`
}

// Resolve loads and normalizes the document, selects the form and resolves
// its conditionals against req.RenderOptions.Values without rendering.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (Resolution, error) {
	if err := o.ready(ctx); err != nil {
		return Resolution{}, err
	}
	form, err := o.loadForm(ctx, req)
	if err != nil {
		return Resolution{}, err
	}
	return o.resolveForm(form, req.RenderOptions.Values), nil
}

// Generate resolves the form and renders it. Interactive renderers receive a
// Refresh function that repeats resolution and model building for new data.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := o.ready(ctx); err != nil {
		return nil, err
	}

	form, err := o.loadForm(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	refresh := func(ctx context.Context, values map[string]any) (model.FormModel, error) {
		return o.buildModel(ctx, form, values)
	}
	formModel, err := refresh(ctx, req.RenderOptions.Values)
	if err != nil {
		return nil, err
	}

	options := req.RenderOptions
	if options.Refresh == nil {
		options.Refresh = refresh
	}

	output, err := renderer.Render(ctx, formModel, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	return o.initialiseErr
}

func (o *Orchestrator) loadForm(ctx context.Context, req Request) (schema.Form, error) {
	adapter, loaded, err := o.resolveAdapter(ctx, req)
	if err != nil {
		return schema.Form{}, err
	}
	doc, err := o.resolveSchemaDocument(ctx, req, adapter, loaded)
	if err != nil {
		return schema.Form{}, err
	}

	ir, err := adapter.Normalize(ctx, doc, schema.NormalizeOptions{
		ContentTypeSlug: req.Slug,
		FormID:          req.FormID,
	})
	if err != nil {
		return schema.Form{}, fmt.Errorf("orchestrator: normalize %s document: %w", adapter.Name(), err)
	}

	form, err := selectForm(ir, req.FormID)
	if err != nil {
		return schema.Form{}, err
	}
	o.logger.Debug("form selected",
		zap.String("adapter", adapter.Name()),
		zap.String("form", form.ID),
		zap.Bool("conditional", form.Schema.HasConditionals()),
	)
	return form, nil
}

func (o *Orchestrator) resolveForm(form schema.Form, values map[string]any) Resolution {
	evaluated := conditional.Evaluate(form.Schema, values)
	for _, decision := range evaluated.Decisions {
		o.logger.Debug("conditional evaluated",
			zap.String("form", form.ID),
			zap.String("path", decision.Path),
			zap.Bool("matched", decision.Matched),
			zap.String("branch", string(decision.Branch)),
			zap.Strings("added", decision.Added),
		)
	}
	return Resolution{
		Form:      form,
		Effective: evaluated.Schema,
		Decisions: evaluated.Decisions,
		Hidden:    conditional.Hidden(form.Schema, values),
		Data:      conditional.Prune(evaluated.Schema, values),
	}
}

func (o *Orchestrator) buildModel(ctx context.Context, form schema.Form, values map[string]any) (model.FormModel, error) {
	resolution := o.resolveForm(form, values)
	formModel, err := o.builder.Build(form, resolution.Effective)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}
	if err := o.applyTransformer(ctx, &formModel); err != nil {
		return model.FormModel{}, err
	}
	if err := o.applyDecorators(&formModel); err != nil {
		return model.FormModel{}, err
	}
	return formModel, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}
	o.defaultsApplied = true

	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.loader == nil {
		o.loader = jsonloader.New(jsonschema.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = openapiparser.New(pkgopenapi.NewParserOptions())
	}
	if o.adapters == nil {
		o.adapters = NewAdapterRegistry()
		o.adapters.MustRegister(jsonschema.NewAdapter(o.loader, jsonschema.WithResolverOptions(o.refOptions)))
		o.adapters.MustRegister(pkgopenapi.NewAdapter(o.loader, o.parser, o.refOptions))
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry.MustRegister(renderer)
	}
	for _, renderer := range o.extraRenderers {
		if err := o.registry.Register(renderer); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: register renderer: %w", err)
			return
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
