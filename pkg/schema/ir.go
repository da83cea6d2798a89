package schema

import (
	"context"
	"slices"
	"sort"
	"strings"
)

// NormalizeOptions carries hints adapters use when turning a document into
// forms.
type NormalizeOptions struct {
	// ContentTypeSlug names the form when the document does not.
	ContentTypeSlug string
	// DefaultFormSuffix replaces ".edit" when deriving ids from $id or the slug.
	DefaultFormSuffix string
	// FormID restricts normalization to a single form.
	FormID string
}

// Form is one renderable entry point of a document: a JSON Schema form or an
// OpenAPI operation request body.
type Form struct {
	ID          string
	Method      string
	Endpoint    string
	Summary     string
	Description string
	Schema      Schema
	Extensions  map[string]any
}

// Schema is the typed schema node shared by adapters, the conditional resolver
// and the model builder. Pointer fields distinguish absent keywords from zero
// values; HasConst does the same for Const since a null or empty const is a
// legal constraint.
type Schema struct {
	Type        string
	Format      string
	Title       string
	Description string
	Default     any
	Enum        []any
	Const       any
	HasConst    bool
	Required    []string
	Properties  map[string]Schema
	Items       *Schema

	AllOf []Schema
	If    *Schema
	Then  *Schema
	Else  *Schema

	Minimum   *float64
	Maximum   *float64
	MinLength *int
	MaxLength *int
	Pattern   string

	Extensions map[string]any `json:"Extensions,omitempty"`
}

// HasConditionals reports whether the node itself carries if/then/else or
// allOf keywords.
func (s Schema) HasConditionals() bool {
	return s.If != nil || s.Then != nil || s.Else != nil || len(s.AllOf) > 0
}

// PropertyNames returns the direct property keys in sorted order.
func (s Schema) PropertyNames() []string {
	var names []string
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether name appears in the node's required list.
func (s Schema) IsRequired(name string) bool {
	return slices.Contains(s.Required, name)
}

// Clone returns a deep copy. Enum, Const and Default values are copied when
// they are JSON containers.
func (s Schema) Clone() Schema {
	out := s
	out.Default = cloneValue(s.Default)
	out.Const = cloneValue(s.Const)
	if s.Enum != nil {
		out.Enum = make([]any, len(s.Enum))
		for i, v := range s.Enum {
			out.Enum[i] = cloneValue(v)
		}
	}
	out.Required = slices.Clone(s.Required)
	if s.Properties != nil {
		out.Properties = make(map[string]Schema, len(s.Properties))
		for key, prop := range s.Properties {
			out.Properties[key] = prop.Clone()
		}
	}
	out.Items = clonePtr(s.Items)
	if s.AllOf != nil {
		out.AllOf = make([]Schema, len(s.AllOf))
		for i, entry := range s.AllOf {
			out.AllOf[i] = entry.Clone()
		}
	}
	out.If = clonePtr(s.If)
	out.Then = clonePtr(s.Then)
	out.Else = clonePtr(s.Else)
	if s.Minimum != nil {
		v := *s.Minimum
		out.Minimum = &v
	}
	if s.Maximum != nil {
		v := *s.Maximum
		out.Maximum = &v
	}
	if s.MinLength != nil {
		v := *s.MinLength
		out.MinLength = &v
	}
	if s.MaxLength != nil {
		v := *s.MaxLength
		out.MaxLength = &v
	}
	if s.Extensions != nil {
		out.Extensions = make(map[string]any, len(s.Extensions))
		for key, value := range s.Extensions {
			out.Extensions[key] = cloneValue(value)
		}
	}
	return out
}

func clonePtr(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	c := s.Clone()
	return &c
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	default:
		return typed
	}
}

// SchemaIR holds the forms an adapter extracted from one document.
type SchemaIR struct {
	Forms map[string]Form
}

// FormRef is the listing view of a Form.
type FormRef struct {
	ID          string
	Title       string
	Summary     string
	Description string
}

func NewSchemaIR() SchemaIR {
	return SchemaIR{Forms: make(map[string]Form)}
}

// Add stores form under its id, allocating the map on first use.
func (ir *SchemaIR) Add(form Form) {
	if ir.Forms == nil {
		ir.Forms = make(map[string]Form)
	}
	ir.Forms[form.ID] = form
}

func (ir SchemaIR) Form(id string) (Form, bool) {
	form, ok := ir.Forms[id]
	return form, ok
}

// FormRefs lists the forms sorted by id.
func (ir SchemaIR) FormRefs() []FormRef {
	if len(ir.Forms) == 0 {
		return nil
	}
	var ids []string
	for id := range ir.Forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	refs := make([]FormRef, 0, len(ids))
	for _, id := range ids {
		form := ir.Forms[id]
		refID := form.ID
		if strings.TrimSpace(refID) == "" {
			refID = id
		}
		refs = append(refs, FormRef{
			ID:          refID,
			Title:       strings.TrimSpace(form.Summary),
			Summary:     form.Summary,
			Description: form.Description,
		})
	}
	return refs
}

// FormatAdapter turns documents of one format into forms.
type FormatAdapter interface {
	Name() string
	Detect(src Source, raw []byte) bool
	Load(ctx context.Context, src Source) (Document, error)
	Normalize(ctx context.Context, doc Document, opts NormalizeOptions) (SchemaIR, error)
	Forms(ctx context.Context, ir SchemaIR) ([]FormRef, error)
}
