package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formcond/pkg/model"
	"github.com/goliatone/go-formcond/pkg/render"
	"github.com/goliatone/go-formcond/pkg/render/template"
	"github.com/goliatone/go-formcond/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formcond/pkg/widgets"
)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	widgets   *widgets.Registry
	overrides map[string]string
	policy    *bluemonday.Policy
	values    map[string]any
	errors    map[string][]string
}

func (r *componentRenderer) render(field model.Field) (string, error) {
	componentName := r.overrideFor(field.Path, field.Name)
	if componentName == "" {
		componentName = r.resolveComponentName(field)
	}

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, field.Path)
	}

	data := components.ComponentData{
		Template:    r.templates,
		Control:     r.control(field),
		RenderChild: r.render,
	}
	if field.Type == model.FieldTypeArray {
		data.RenderChild = r.renderItemField
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, field.Path, err)
	}

	return r.buildFieldMarkup(field, componentName, handlesChrome(field, descriptor), control.String()), nil
}

// renderItemField renders the fields of an array item template. Item fields
// never carry values.
func (r *componentRenderer) renderItemField(field model.Field) (string, error) {
	values := r.values
	r.values = nil
	defer func() { r.values = values }()
	return r.render(field)
}

func (r *componentRenderer) control(field model.Field) components.Control {
	control := components.Control{
		ID:          controlID(field.Path),
		Name:        field.Path,
		Label:       field.Label,
		InputType:   inputType(field),
		Placeholder: field.UIHints["placeholder"],
		Description: r.sanitize(field.Description),
		Required:    field.Required,
		Attrs:       validationAttrs(field),
	}

	value, ok := render.ValueAt(r.values, field.Path)
	if !ok || value == nil {
		value = field.Default
	}

	switch field.Type {
	case model.FieldTypeBoolean:
		control.Checked = value == true || formatValue(value) == "true"
	case model.FieldTypeObject:
	case model.FieldTypeArray:
		items, _ := value.([]any)
		selected := make(map[string]bool, len(items))
		lines := make([]string, 0, len(items))
		for _, item := range items {
			formatted := formatValue(item)
			selected[formatted] = true
			lines = append(lines, formatted)
		}
		control.Value = strings.Join(lines, "\n")
		if field.Items != nil {
			control.Options = options(field.Items.Enum, func(v string) bool { return selected[v] })
		}
	default:
		control.Value = formatValue(value)
		control.Options = options(field.Enum, func(v string) bool { return v == control.Value })
	}
	return control
}

func (r *componentRenderer) sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || r.policy == nil {
		return html.EscapeString(trimmed)
	}
	return r.policy.Sanitize(trimmed)
}

func (r *componentRenderer) overrideFor(path, name string) string {
	if value := r.overrides[path]; value != "" {
		return value
	}
	return r.overrides[name]
}

// buildFieldMarkup wraps a control with its label, description, help text
// and error messages. Group components render their own legend.
func (r *componentRenderer) buildFieldMarkup(field model.Field, componentName string, group bool, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="fc-field`)
	if cls := strings.TrimSpace(field.UIHints["cssClass"]); cls != "" {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(cls))
	}
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`" data-path="`)
	builder.WriteString(html.EscapeString(field.Path))
	builder.WriteString(`"`)
	messages := r.errors[field.Path]
	if len(messages) > 0 {
		builder.WriteString(` data-invalid="true"`)
	}
	builder.WriteString(">\n")

	if !group && shouldRenderLabel(field) {
		builder.WriteString(`  <label for="`)
		builder.WriteString(html.EscapeString(controlID(field.Path)))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(field.Label))
		if field.Required {
			builder.WriteString(` *`)
		}
		builder.WriteString("</label>\n")
	}

	// Controls are written verbatim; re-indenting would alter textarea
	// content.
	if trimmed := strings.TrimSpace(control); trimmed != "" {
		builder.WriteString(trimmed)
		builder.WriteByte('\n')
	}

	if desc := r.sanitize(field.Description); desc != "" && !group {
		builder.WriteString(`  <small class="fc-description">`)
		builder.WriteString(desc)
		builder.WriteString("</small>\n")
	}
	if hint := strings.TrimSpace(field.UIHints["helpText"]); hint != "" {
		builder.WriteString(`  <small class="fc-help">`)
		builder.WriteString(html.EscapeString(hint))
		builder.WriteString("</small>\n")
	}
	for _, message := range messages {
		builder.WriteString(`  <p class="fc-error">`)
		builder.WriteString(html.EscapeString(message))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

func (r *componentRenderer) resolveComponentName(field model.Field) string {
	if widget, ok := r.widgets.Resolve(field); ok {
		return widget
	}
	return components.NameInput
}

func handlesChrome(field model.Field, descriptor components.Descriptor) bool {
	if descriptor.Group {
		return true
	}
	return descriptor.Name == components.NameArray && field.Items != nil && field.Items.Type == model.FieldTypeObject
}

func shouldRenderLabel(field model.Field) bool {
	if strings.TrimSpace(field.Label) == "" {
		return false
	}
	return strings.TrimSpace(field.UIHints["hideLabel"]) != "true"
}

func inputType(field model.Field) string {
	if hint := strings.TrimSpace(field.UIHints["inputType"]); hint != "" {
		return hint
	}
	switch field.Type {
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return "number"
	default:
		return "text"
	}
}

func validationAttrs(field model.Field) []components.Attr {
	var attrs []components.Attr
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMin:
			attrs = append(attrs, components.Attr{Name: "min", Value: rule.Params["value"]})
		case model.ValidationRuleMax:
			attrs = append(attrs, components.Attr{Name: "max", Value: rule.Params["value"]})
		case model.ValidationRuleMinLength:
			attrs = append(attrs, components.Attr{Name: "minlength", Value: rule.Params["value"]})
		case model.ValidationRuleMaxLength:
			attrs = append(attrs, components.Attr{Name: "maxlength", Value: rule.Params["value"]})
		case model.ValidationRulePattern:
			attrs = append(attrs, components.Attr{Name: "pattern", Value: rule.Params["pattern"]})
		}
	}
	if field.Type == model.FieldTypeInteger {
		attrs = append(attrs, components.Attr{Name: "step", Value: "1"})
	}
	return attrs
}

func options(enum []any, selected func(string) bool) []components.Option {
	if len(enum) == 0 {
		return nil
	}
	out := make([]components.Option, 0, len(enum))
	for _, value := range enum {
		formatted := formatValue(value)
		out = append(out, components.Option{Value: formatted, Label: formatted, Selected: selected(formatted)})
	}
	return out
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func controlID(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer(".", "-", "[]", "-item")
	return "fc-" + replacer.Replace(trimmed)
}
