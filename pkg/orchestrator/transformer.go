package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formcond/pkg/model"
)

// Transformer mutates every built FormModel before decorators run. It is
// called again on each refresh, so it must be idempotent.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file:
//
//	{
//	  "uiHints": {"submitLabel": "Ship it"},
//	  "fields": {
//	    "address.zipcode": {"label": "ZIP", "placeholder": "10001"}
//	  }
//	}
//
// Field keys are model paths. Patches for fields missing from the current
// form are skipped since conditional fields come and go with the data.
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Metadata map[string]string         `json:"metadata"`
	UIHints  map[string]string         `json:"uiHints"`
	Fields   map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Placeholder string            `json:"placeholder"`
	Metadata    map[string]string `json:"metadata"`
	UIHints     map[string]string `json:"uiHints"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied form.
func (t *JSONPresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("json preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(t.document.Metadata) > 0 {
		form.Metadata = mergeStringMap(form.Metadata, t.document.Metadata)
	}
	if len(t.document.UIHints) > 0 {
		form.UIHints = mergeStringMap(form.UIHints, t.document.UIHints)
	}

	for path, patch := range t.document.Fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		if field := findFieldByPath(form.Fields, path); field != nil {
			applyFieldPatch(field, patch)
		}
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch jsonFieldPatch) {
	if field == nil {
		return
	}
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.UIHints = mergeStringMap(field.UIHints, map[string]string{"placeholder": patch.Placeholder})
	}
	if len(patch.Metadata) > 0 {
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
	}
	if len(patch.UIHints) > 0 {
		field.UIHints = mergeStringMap(field.UIHints, patch.UIHints)
	}
}

// findFieldByPath matches model paths, including array item templates
// ("tags[]", "lines[].sku").
func findFieldByPath(fields []model.Field, path string) *model.Field {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	for idx := range fields {
		field := &fields[idx]
		if field.Path == path {
			return field
		}
		if found := findFieldByPath(field.Nested, path); found != nil {
			return found
		}
		if field.Items != nil {
			if field.Items.Path == path {
				return field.Items
			}
			if found := findFieldByPath(field.Items.Nested, path); found != nil {
				return found
			}
		}
	}
	return nil
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
