package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formcond/pkg/model"
	rendertemplate "github.com/goliatone/go-formcond/pkg/render/template"
)

// Renderer writes the control markup of one field into buf. Label,
// description and error chrome are added by the caller unless the component
// is a group (object, array).
type Renderer func(buf *bytes.Buffer, field model.Field, data ComponentData) error

// ComponentData carries the prepared control state and helpers.
type ComponentData struct {
	Template    rendertemplate.TemplateRenderer
	Control     Control
	RenderChild func(field model.Field) (string, error)
}

// Control is the template view of a field: identifiers, current value and
// constraint attributes.
type Control struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	InputType   string   `json:"input_type"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Checked     bool     `json:"checked"`
	Multiple    bool     `json:"multiple"`
	Attrs       []Attr   `json:"attrs"`
	Options     []Option `json:"options"`
	Children    string   `json:"children"`
}

type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Descriptor binds a component name to its renderer. Group components render
// their own legend and receive children through ComponentData.RenderChild.
type Descriptor struct {
	Name     string
	Renderer Renderer
	Group    bool
}

// Registry tracks component descriptors keyed by name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns a copy callers can mutate without affecting r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = descriptor
	}
	return cloned
}

// Register associates a descriptor with name, replacing any existing entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.components[name] = descriptor
	return nil
}

func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	return descriptor, ok
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
