package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formcond/pkg/schema"
)

const DefaultAdapterName = "jsonschema"

const defaultFormMethod = "POST"

// Dialects that define if/then/else.
var supportedDialects = map[string]bool{
	"http://json-schema.org/draft-07/schema":       true,
	"https://json-schema.org/draft-07/schema":      true,
	"https://json-schema.org/draft/2019-09/schema": true,
	"http://json-schema.org/draft/2019-09/schema":  true,
	"https://json-schema.org/draft/2020-12/schema": true,
	"http://json-schema.org/draft/2020-12/schema":  true,
}

// Adapter implements schema.FormatAdapter for plain JSON Schema documents
// written as JSON or YAML.
type Adapter struct {
	loader   Loader
	resolver *Resolver
}

type AdapterOption func(*adapterConfig)

type adapterConfig struct {
	resolver *Resolver
	refs     ResolveOptions
}

// WithResolver replaces the default $ref resolver.
func WithResolver(resolver *Resolver) AdapterOption {
	return func(cfg *adapterConfig) {
		cfg.resolver = resolver
	}
}

// WithResolverOptions tunes the default $ref resolver.
func WithResolverOptions(options ResolveOptions) AdapterOption {
	return func(cfg *adapterConfig) {
		cfg.refs = options
	}
}

func NewAdapter(loader Loader, options ...AdapterOption) *Adapter {
	cfg := adapterConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.resolver == nil {
		cfg.resolver = NewResolver(loader, cfg.refs)
	}
	return &Adapter{loader: loader, resolver: cfg.resolver}
}

func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect accepts objects that look like a schema and are not OpenAPI or
// Swagger documents.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	payload, err := Decode(raw)
	if err != nil {
		return false
	}
	if _, ok := payload["openapi"]; ok {
		return false
	}
	if _, ok := payload["swagger"]; ok {
		return false
	}
	for _, key := range []string{"$schema", "$id", "$defs", "definitions", "properties", "type", "allOf", "if"} {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}

func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("jsonschema adapter: loader is nil")
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return schema.Document{}, fmt.Errorf("jsonschema adapter: load %s: %w", src.Location(), err)
	}
	return doc, nil
}

// Normalize expands refs and converts the document into one form per
// discovered form id. Every form shares the same root schema.
func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	if a == nil || a.resolver == nil {
		return schema.SchemaIR{}, errors.New("jsonschema adapter: resolver is nil")
	}
	if doc.Empty() {
		return schema.SchemaIR{}, errors.New("jsonschema adapter: empty document")
	}

	payload, err := Decode(doc.Raw())
	if err != nil {
		return schema.SchemaIR{}, err
	}
	if err := checkDialect(payload); err != nil {
		return schema.SchemaIR{}, err
	}

	resolved, err := a.resolver.Resolve(ctx, doc, payload)
	if err != nil {
		return schema.SchemaIR{}, err
	}
	root, err := NormalizeSchema(resolved, "#")
	if err != nil {
		return schema.SchemaIR{}, err
	}

	refs, err := DiscoverForms(payload, FormDiscoveryOptions{
		Slug:         opts.ContentTypeSlug,
		FormIDSuffix: opts.DefaultFormSuffix,
	})
	if err != nil {
		return schema.SchemaIR{}, err
	}
	if opts.FormID != "" {
		refs = filterForms(refs, opts.FormID)
		if len(refs) == 0 {
			return schema.SchemaIR{}, fmt.Errorf("jsonschema adapter: form %q not found", opts.FormID)
		}
	}

	ir := schema.NewSchemaIR()
	for _, ref := range refs {
		summary := strings.TrimSpace(ref.Summary)
		if summary == "" {
			summary = firstNonEmpty(ref.Title, root.Title)
		}
		ir.Add(schema.Form{
			ID:          ref.ID,
			Method:      defaultFormMethod,
			Endpoint:    endpointFromSlug(opts.ContentTypeSlug),
			Summary:     summary,
			Description: firstNonEmpty(ref.Description, root.Description),
			Schema:      root.Clone(),
		})
	}
	return ir, nil
}

func (a *Adapter) Forms(_ context.Context, ir schema.SchemaIR) ([]schema.FormRef, error) {
	return ir.FormRefs(), nil
}

func checkDialect(payload map[string]any) error {
	raw, present := payload["$schema"]
	if !present {
		return nil
	}
	value, ok := raw.(string)
	if !ok {
		return errors.New("jsonschema: $schema must be a string")
	}
	value = strings.TrimSuffix(strings.TrimSpace(value), "#")
	if !supportedDialects[value] {
		return fmt.Errorf("jsonschema: unsupported $schema %q", value)
	}
	return nil
}

func filterForms(refs []schema.FormRef, id string) []schema.FormRef {
	for _, ref := range refs {
		if ref.ID == id {
			return []schema.FormRef{ref}
		}
	}
	return nil
}

func endpointFromSlug(slug string) string {
	value := strings.TrimSpace(slug)
	if value == "" {
		return "/"
	}
	return "/" + strings.TrimPrefix(value, "/")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
