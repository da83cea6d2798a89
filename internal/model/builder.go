package model

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formcond/pkg/schema"
)

// Builder turns an effective schema into a FormModel. It never looks at
// conditional keywords: callers resolve them first so the model only holds
// fields that are currently visible.
type Builder struct {
	opts Options
}

func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	return &Builder{opts: opts}
}

// Build converts effective, the resolved schema of form, into a FormModel.
func (b *Builder) Build(form schema.Form, effective schema.Schema) (FormModel, error) {
	if err := validateForm(form, effective); err != nil {
		return FormModel{}, err
	}

	out := FormModel{
		ID:          form.ID,
		Endpoint:    form.Endpoint,
		Method:      strings.ToUpper(form.Method),
		Summary:     form.Summary,
		Description: form.Description,
		Fields:      b.fields("", effective),
	}

	metadata := metadataFromExtensions(form.Extensions)
	for key, value := range metadataFromExtensions(effective.Extensions) {
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[key] = value
	}
	out.Metadata = metadata
	out.UIHints = filterUIHints(metadata)
	return out, nil
}

func (b *Builder) fields(parent string, node schema.Schema) []Field {
	names := node.PropertyNames()
	if len(names) == 0 {
		return nil
	}
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, b.field(name, joinPath(parent, name), node.Properties[name], node.IsRequired(name)))
	}
	return fields
}

func (b *Builder) field(name, path string, node schema.Schema, required bool) Field {
	field := Field{
		Name:        name,
		Path:        path,
		Type:        fieldType(node),
		Format:      node.Format,
		Required:    required,
		Label:       b.label(name, node),
		Description: node.Description,
		Default:     node.Default,
		Validations: validations(node),
	}
	if len(node.Enum) > 0 {
		field.Enum = append([]any(nil), node.Enum...)
	} else if node.HasConst {
		field.Enum = []any{node.Const}
	}

	switch field.Type {
	case FieldTypeObject:
		field.Nested = b.fields(path, node)
	case FieldTypeArray:
		if node.Items != nil {
			item := b.field(name, path+"[]", *node.Items, false)
			field.Items = &item
		}
	}

	field.Metadata, field.UIHints = ParseUIExtensions(node.Extensions)
	if label := field.UIHints["label"]; label != "" {
		field.Label = label
	}
	applyFormatHint(&field)
	return field
}

// label prefers the schema title, falling back to the configured labeler.
func (b *Builder) label(name string, node schema.Schema) string {
	if title := strings.TrimSpace(node.Title); title != "" {
		return title
	}
	return b.opts.Labeler(name)
}

func fieldType(node schema.Schema) FieldType {
	switch node.Type {
	case "integer":
		return FieldTypeInteger
	case "number":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeBoolean
	case "array":
		return FieldTypeArray
	case "object":
		return FieldTypeObject
	case "":
		if len(node.Properties) > 0 {
			return FieldTypeObject
		}
		return FieldTypeString
	default:
		return FieldTypeString
	}
}

func validations(node schema.Schema) []ValidationRule {
	var rules []ValidationRule
	if node.Minimum != nil {
		rules = append(rules, ValidationRule{Kind: ValidationRuleMin, Params: map[string]string{"value": formatFloat(*node.Minimum)}})
	}
	if node.Maximum != nil {
		rules = append(rules, ValidationRule{Kind: ValidationRuleMax, Params: map[string]string{"value": formatFloat(*node.Maximum)}})
	}
	if node.MinLength != nil {
		rules = append(rules, ValidationRule{Kind: ValidationRuleMinLength, Params: map[string]string{"value": strconv.Itoa(*node.MinLength)}})
	}
	if node.MaxLength != nil {
		rules = append(rules, ValidationRule{Kind: ValidationRuleMaxLength, Params: map[string]string{"value": strconv.Itoa(*node.MaxLength)}})
	}
	if node.Pattern != "" {
		rules = append(rules, ValidationRule{Kind: ValidationRulePattern, Params: map[string]string{"pattern": node.Pattern}})
	}
	return rules
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// applyFormatHint maps string formats onto HTML input types unless an
// explicit inputType hint exists.
func applyFormatHint(field *Field) {
	if field.UIHints["inputType"] != "" {
		return
	}
	var inputType string
	switch strings.ToLower(strings.TrimSpace(field.Format)) {
	case "date":
		inputType = "date"
	case "time":
		inputType = "time"
	case "date-time", "datetime":
		inputType = "datetime-local"
	case "email":
		inputType = "email"
	case "uri", "url", "iri":
		inputType = "url"
	case "tel", "phone":
		inputType = "tel"
	case "password":
		inputType = "password"
	default:
		return
	}
	if field.UIHints == nil {
		field.UIHints = make(map[string]string, 1)
	}
	field.UIHints["inputType"] = inputType
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
