package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formcond/pkg/model"
)

// Built-in widget identifiers. They double as the vanilla renderer's
// component names.
const (
	WidgetInput    = "input"
	WidgetTextarea = "textarea"
	WidgetSelect   = "select"
	WidgetBoolean  = "boolean"
	WidgetObject   = "object"
	WidgetArray    = "array"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order. An
// empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher under name. The latest registration of a name does
// not replace earlier ones; both take part in resolution.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. An x-formgen widget extension
// or a widget UI hint is honoured before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	if len(rules) == 0 {
		return "", false
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator by recording the resolved widget as a
// UI hint on every field, keeping hints that are already set.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	form.Fields = r.decorateFields(form.Fields)
	return nil
}

func (r *Registry) decorateFields(fields []model.Field) []model.Field {
	if len(fields) == 0 {
		return fields
	}
	decorated := make([]model.Field, len(fields))
	for idx, field := range fields {
		decorated[idx] = r.decorateField(field)
	}
	return decorated
}

func (r *Registry) decorateField(field model.Field) model.Field {
	if widget, ok := r.Resolve(field); ok {
		hints := make(map[string]string, len(field.UIHints)+1)
		for key, value := range field.UIHints {
			hints[key] = value
		}
		if hints["widget"] == "" {
			hints["widget"] = widget
		}
		field.UIHints = hints
	}
	if field.Items != nil {
		item := r.decorateField(*field.Items)
		field.Items = &item
	}
	if len(field.Nested) > 0 {
		field.Nested = r.decorateFields(field.Nested)
	}
	return field
}

func explicitWidget(field model.Field) string {
	if widget := strings.TrimSpace(field.Metadata["widget"]); widget != "" {
		return widget
	}
	return strings.TrimSpace(field.UIHints["widget"])
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetObject, 90, func(field model.Field) bool {
		return field.Type == model.FieldTypeObject
	})

	r.Register(WidgetArray, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeArray
	})

	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		return len(field.Enum) > 0
	})

	r.Register(WidgetBoolean, 60, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean
	})

	r.Register(WidgetTextarea, 50, func(field model.Field) bool {
		if field.Type != model.FieldTypeString {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(field.Format)) {
		case "textarea", "markdown", "json", "yaml":
			return true
		}
		return false
	})
}
