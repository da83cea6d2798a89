package jsonschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formcond/pkg/schema"
)

const (
	defaultFormSuffix = ".edit"
	// DefaultFormID names the single form of a document that carries no
	// identifying metadata.
	DefaultFormID = "default"
)

// FormDiscoveryOptions controls fallback form naming.
type FormDiscoveryOptions struct {
	Slug         string
	FormIDSuffix string
}

// DiscoverForms lists the forms a document offers, in order of preference:
// x-formgen.forms, then $id plus suffix, then the slug plus suffix, then a
// single form named "default".
func DiscoverForms(payload map[string]any, opts FormDiscoveryOptions) ([]schema.FormRef, error) {
	if payload == nil {
		return nil, errors.New("jsonschema: schema is nil")
	}

	refs, declared, err := declaredForms(payload)
	if err != nil {
		return nil, err
	}
	if declared {
		return refs, nil
	}

	title := strings.TrimSpace(readString(payload, "title"))
	if id := strings.TrimSpace(readString(payload, "$id")); id != "" {
		return []schema.FormRef{{ID: id + formSuffix(opts.FormIDSuffix), Title: title}}, nil
	}
	if slug := strings.TrimSpace(opts.Slug); slug != "" {
		return []schema.FormRef{{ID: slug + formSuffix(opts.FormIDSuffix), Title: title}}, nil
	}
	return []schema.FormRef{{ID: DefaultFormID, Title: title}}, nil
}

func declaredForms(payload map[string]any) ([]schema.FormRef, bool, error) {
	raw, ok := payload["x-formgen"]
	if !ok {
		return nil, false, nil
	}
	meta, ok := raw.(map[string]any)
	if !ok {
		return nil, true, errors.New("jsonschema: x-formgen must be an object")
	}
	formsRaw, ok := meta["forms"]
	if !ok {
		return nil, false, nil
	}
	list, ok := formsRaw.([]any)
	if !ok {
		return nil, true, errors.New("jsonschema: x-formgen.forms must be an array")
	}
	if len(list) == 0 {
		return nil, true, errors.New("jsonschema: x-formgen.forms is empty")
	}

	refs := make([]schema.FormRef, 0, len(list))
	seen := make(map[string]bool, len(list))
	for idx, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, true, fmt.Errorf("jsonschema: x-formgen.forms[%d] must be an object", idx)
		}
		id := strings.TrimSpace(readString(entry, "id"))
		if id == "" {
			return nil, true, fmt.Errorf("jsonschema: x-formgen.forms[%d].id is required", idx)
		}
		if seen[id] {
			return nil, true, fmt.Errorf("jsonschema: x-formgen.forms[%d] duplicates id %q", idx, id)
		}
		seen[id] = true
		refs = append(refs, schema.FormRef{
			ID:          id,
			Title:       strings.TrimSpace(readString(entry, "title")),
			Summary:     strings.TrimSpace(readString(entry, "summary")),
			Description: strings.TrimSpace(readString(entry, "description")),
		})
	}
	return refs, true, nil
}

func formSuffix(suffix string) string {
	value := strings.TrimSpace(suffix)
	if value == "" {
		return defaultFormSuffix
	}
	return "." + strings.TrimPrefix(value, ".")
}
