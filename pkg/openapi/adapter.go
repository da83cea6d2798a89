package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-formcond/pkg/jsonschema"
	"github.com/goliatone/go-formcond/pkg/schema"
)

const DefaultAdapterName = "openapi"

// requestDef is where the request schema is parked in the synthetic document
// handed to the ref resolver.
const requestDef = "request"

// Adapter exposes every operation with a request body as a form whose id is
// the operationId (or "method:path" when the id is missing).
type Adapter struct {
	loader   jsonschema.Loader
	parser   Parser
	resolver *jsonschema.Resolver
}

func NewAdapter(loader jsonschema.Loader, parser Parser, refs jsonschema.ResolveOptions) *Adapter {
	return &Adapter{
		loader:   loader,
		parser:   parser,
		resolver: jsonschema.NewResolver(loader, refs),
	}
}

func (a *Adapter) Name() string {
	return DefaultAdapterName
}

func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	payload, err := jsonschema.Decode(raw)
	if err != nil {
		return false
	}
	_, isOpenAPI := payload["openapi"]
	_, isSwagger := payload["swagger"]
	return isOpenAPI || isSwagger
}

func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("openapi adapter: loader is nil")
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return schema.Document{}, fmt.Errorf("openapi adapter: load %s: %w", src.Location(), err)
	}
	return doc, nil
}

func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	if a == nil || a.parser == nil {
		return schema.SchemaIR{}, errors.New("openapi adapter: parser is nil")
	}
	spec, err := a.parser.Parse(ctx, doc)
	if err != nil {
		return schema.SchemaIR{}, err
	}

	ops := make([]Operation, 0, len(spec.Operations))
	for _, op := range spec.Operations {
		if !op.HasRequestBody() {
			continue
		}
		if opts.FormID != "" && op.ID != opts.FormID {
			continue
		}
		ops = append(ops, op)
	}
	if opts.FormID != "" && len(ops) == 0 {
		return schema.SchemaIR{}, fmt.Errorf("openapi adapter: operation %q not found or has no request body", opts.FormID)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })

	ir := schema.NewSchemaIR()
	for _, op := range ops {
		body, err := a.requestSchema(ctx, doc, spec.Root, op)
		if err != nil {
			return schema.SchemaIR{}, err
		}
		ir.Add(FormFromOperation(op, body))
	}
	return ir, nil
}

func (a *Adapter) Forms(_ context.Context, ir schema.SchemaIR) ([]schema.FormRef, error) {
	return ir.FormRefs(), nil
}

// requestSchema expands refs of the operation's request schema against the
// document's components and normalizes the result.
func (a *Adapter) requestSchema(ctx context.Context, doc schema.Document, root map[string]any, op Operation) (schema.Schema, error) {
	synthetic := map[string]any{
		"$defs": map[string]any{requestDef: op.RequestSchema},
	}
	if components, ok := root["components"]; ok {
		synthetic["components"] = components
	}
	if definitions, ok := root["definitions"]; ok {
		synthetic["definitions"] = definitions
	}

	resolved, err := a.resolver.Resolve(ctx, doc, synthetic)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("openapi adapter: %s: %w", op.ID, err)
	}
	defs, _ := resolved["$defs"].(map[string]any)
	body, err := jsonschema.NormalizeSchema(defs[requestDef], op.Pointer)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("openapi adapter: %s: %w", op.ID, err)
	}
	return body, nil
}

// FormFromOperation pairs operation metadata with its normalized body.
func FormFromOperation(op Operation, body schema.Schema) schema.Form {
	return schema.Form{
		ID:          op.ID,
		Method:      op.Method,
		Endpoint:    op.Path,
		Summary:     op.Summary,
		Description: op.Description,
		Schema:      body,
		Extensions:  op.Extensions,
	}
}
