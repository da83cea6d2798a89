// Package formcond renders conditional JSON Schema and OpenAPI request
// schemas as forms. The helpers here wrap pkg/orchestrator for the common
// cases.
package formcond

import (
	"context"

	"github.com/goliatone/go-formcond/pkg/orchestrator"
	"github.com/goliatone/go-formcond/pkg/render"
	"github.com/goliatone/go-formcond/pkg/schema"
)

// RenderOptions carry per-request form data, errors and hidden inputs.
type RenderOptions = render.RenderOptions

// Resolution is the effective schema of a form for some data, plus the
// conditional decisions that produced it.
type Resolution = orchestrator.Resolution

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads source, resolves the conditionals of form formID
// against options.Values and renders it with the vanilla renderer. formID
// may be empty when the document holds a single form.
func GenerateHTML(ctx context.Context, source schema.Source, formID string, options RenderOptions, opts ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(opts...).Generate(ctx, orchestrator.Request{
		Source:        source,
		FormID:        formID,
		RenderOptions: options,
	})
}

// GenerateHTMLFromDocument is GenerateHTML for a document already in memory.
func GenerateHTMLFromDocument(ctx context.Context, doc schema.Document, formID string, options RenderOptions, opts ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(opts...).Generate(ctx, orchestrator.Request{
		Document:      &doc,
		FormID:        formID,
		RenderOptions: options,
	})
}

// ResolveSchema returns the effective schema of form formID for data.
func ResolveSchema(ctx context.Context, source schema.Source, formID string, data map[string]any, opts ...orchestrator.Option) (Resolution, error) {
	return orchestrator.New(opts...).Resolve(ctx, orchestrator.Request{
		Source:        source,
		FormID:        formID,
		RenderOptions: RenderOptions{Values: data},
	})
}
