package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formcond/pkg/render"
)

// State tracks the answers of a session and the server errors keyed by
// field path. Array elements use numeric segments ("tags.0").
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState copies prefill so answers never leak into the caller's map.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	return &State{
		values: render.CloneValues(prefill),
		errors: cloneErrors(errs),
	}
}

// Values returns the live value map.
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a dotted path.
func (s *State) ErrorsFor(path string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[path]
}

// GetValue resolves a dotted path into the values map.
func (s *State) GetValue(path string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return getPath(s.values, path)
}

// SetValue writes value at a dotted path, creating intermediate maps and
// slices.
func (s *State) SetValue(path string, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return setPath(s.values, path, value)
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	current := any(root)
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("tui: root map is nil")
	}
	_, err := assign(root, strings.Split(path, "."), value)
	if err != nil {
		return fmt.Errorf("tui: set %q: %w", path, err)
	}
	return nil
}

// assign stores value under segments inside node and returns the node, which
// differs from the input when a slice had to grow or a container was created.
// Missing containers become slices when their key is an index, maps otherwise.
func assign(node any, segments []string, value any) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	segment, rest := segments[0], segments[1:]

	switch container := node.(type) {
	case map[string]any:
		child, err := assign(container[segment], rest, value)
		if err != nil {
			return nil, err
		}
		container[segment] = child
		return container, nil
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("expected index, got %q", segment)
		}
		if idx < 0 {
			return nil, fmt.Errorf("negative index %d", idx)
		}
		if len(container) <= idx {
			container = append(container, make([]any, idx+1-len(container))...)
		}
		child, err := assign(container[idx], rest, value)
		if err != nil {
			return nil, err
		}
		container[idx] = child
		return container, nil
	default:
		if idx, err := strconv.Atoi(segment); err == nil && idx >= 0 {
			return assign(make([]any, idx+1), segments, value)
		}
		return assign(make(map[string]any), segments, value)
	}
}
