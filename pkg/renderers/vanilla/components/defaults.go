package components

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-formcond/pkg/model"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry returns a registry holding the built-in components.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{Renderer: templateComponentRenderer(templatePrefix + "input.tmpl")})
	registry.MustRegister(NameTextarea, Descriptor{Renderer: templateComponentRenderer(templatePrefix + "textarea.tmpl")})
	registry.MustRegister(NameSelect, Descriptor{Renderer: templateComponentRenderer(templatePrefix + "select.tmpl")})
	registry.MustRegister(NameBoolean, Descriptor{Renderer: templateComponentRenderer(templatePrefix + "boolean.tmpl")})
	registry.MustRegister(NameObject, Descriptor{Renderer: objectRenderer, Group: true})
	registry.MustRegister(NameArray, Descriptor{Renderer: arrayRenderer})

	return registry
}

func templateComponentRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		rendered, err := data.Template.RenderTemplate(templateName, map[string]any{
			"field":   field,
			"control": data.Control,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// objectRenderer renders nested fields inside a fieldset.
func objectRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if data.RenderChild != nil {
		var children bytes.Buffer
		for _, nested := range field.Nested {
			child, err := data.RenderChild(nested)
			if err != nil {
				return err
			}
			children.WriteString(child)
		}
		data.Control.Children = children.String()
	}
	return templateComponentRenderer(templatePrefix+"object.tmpl")(buf, field, data)
}

// arrayRenderer picks a control by item shape: a multi select for enum
// items, a repeated group template for object items and a one-per-line
// textarea otherwise.
func arrayRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	items := field.Items
	switch {
	case items != nil && len(items.Enum) > 0:
		data.Control.Multiple = true
		return templateComponentRenderer(templatePrefix+"select.tmpl")(buf, field, data)
	case items != nil && items.Type == model.FieldTypeObject && data.RenderChild != nil:
		var children bytes.Buffer
		for _, nested := range items.Nested {
			child, err := data.RenderChild(nested)
			if err != nil {
				return err
			}
			children.WriteString(child)
		}
		data.Control.Children = children.String()
		return templateComponentRenderer(templatePrefix+"array.tmpl")(buf, field, data)
	default:
		return templateComponentRenderer(templatePrefix+"textarea.tmpl")(buf, field, data)
	}
}
