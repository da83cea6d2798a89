package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formcond/pkg/schema"
)

func (o *Orchestrator) resolveAdapter(ctx context.Context, req Request) (schema.FormatAdapter, *schema.Document, error) {
	if o.adapters == nil {
		return nil, nil, errors.New("orchestrator: adapter registry is nil")
	}

	if format := strings.TrimSpace(req.Format); format != "" {
		adapter, err := o.adapters.Get(format)
		if err != nil {
			return nil, nil, err
		}
		return adapter, req.Document, nil
	}

	doc, err := o.documentForDetection(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	matches := o.adapters.Detect(doc.Source(), doc.Raw())
	switch len(matches) {
	case 0:
		if o.defaultAdapter == "" {
			return nil, nil, errors.New("orchestrator: unable to detect format")
		}
		adapter, err := o.adapters.Get(o.defaultAdapter)
		return adapter, &doc, err
	case 1:
		return matches[0], &doc, nil
	default:
		return nil, nil, fmt.Errorf("orchestrator: multiple adapters matched payload (%s), specify format", formatAdapterNames(matches))
	}
}

// documentForDetection loads the raw document once; the adapter reuses it.
func (o *Orchestrator) documentForDetection(ctx context.Context, req Request) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document for detection: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) resolveSchemaDocument(ctx context.Context, req Request, adapter schema.FormatAdapter, loaded *schema.Document) (schema.Document, error) {
	if loaded != nil {
		return *loaded, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := adapter.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

// selectForm picks the requested form, or the only one when no id is given.
func selectForm(ir schema.SchemaIR, formID string) (schema.Form, error) {
	refs := ir.FormRefs()
	if formID != "" {
		form, ok := ir.Form(formID)
		if !ok {
			return schema.Form{}, fmt.Errorf("orchestrator: form %q not found (available: %s)", formID, formatFormRefs(refs))
		}
		return form, nil
	}
	switch len(refs) {
	case 0:
		return schema.Form{}, errors.New("orchestrator: document declares no forms")
	case 1:
		form, _ := ir.Form(refs[0].ID)
		return form, nil
	default:
		return schema.Form{}, fmt.Errorf("orchestrator: form id is required (available: %s)", formatFormRefs(refs))
	}
}

func formatFormRefs(refs []schema.FormRef) string {
	if len(refs) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID == "" {
			continue
		}
		ids = append(ids, ref.ID)
	}
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

func formatAdapterNames(adapters []schema.FormatAdapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		if name := strings.TrimSpace(adapter.Name()); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
