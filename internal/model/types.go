package model

import "strings"

// FieldType is the simplified kind a renderer picks a control for.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule is a constraint hint. Bounds and lengths carry their value in
// Params["value"], patterns in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field is one input of a form. Path is the dotted location of the value in
// the submitted data ("address.street"); array items use "[]" as their last
// segment.
type Field struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Items       *Field            `json:"items,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// FormModel is what renderers consume: the fields of one effective schema plus
// the form's submission metadata.
type FormModel struct {
	ID          string            `json:"id"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// Field finds a field by dotted path, descending into nested objects.
func (m FormModel) Field(path string) (Field, bool) {
	fields := m.Fields
	segments := strings.Split(path, ".")
	for idx, segment := range segments {
		found := false
		for _, field := range fields {
			if field.Name != segment {
				continue
			}
			if idx == len(segments)-1 {
				return field, true
			}
			fields = field.Nested
			found = true
			break
		}
		if !found {
			return Field{}, false
		}
	}
	return Field{}, false
}

// Paths lists the dotted path of every leaf and object field, depth first in
// field order. Array item templates are not listed.
func (m FormModel) Paths() []string {
	var out []string
	var walk func(fields []Field)
	walk = func(fields []Field) {
		for _, field := range fields {
			out = append(out, field.Path)
			walk(field.Nested)
		}
	}
	walk(m.Fields)
	return out
}
