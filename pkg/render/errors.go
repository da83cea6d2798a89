package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formcond/pkg/model"
)

// ErrorMapping splits validation messages into field-level and form-level
// groups.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors assigns each message to the deepest field of form whose path
// prefixes the message key. Keys may be dotted paths, JSON pointers or
// bracketed paths ("tags[0]"); array indexes are ignored. Keys matching no
// field become form-level messages.
func MapErrors(form model.FormModel, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]bool)
	for _, path := range form.Paths() {
		known[path] = true
	}

	for _, key := range sortedKeys(payload) {
		messages := MergeFormErrors(nil, payload[key]...)
		if len(messages) == 0 {
			continue
		}
		path := deepestMatch(splitErrorKey(key), known)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}
	mapping.Form = MergeFormErrors(mapping.Form)
	return mapping
}

// MergeFormErrors concatenates messages, trimming them and dropping blanks and
// duplicates while keeping order.
func MergeFormErrors(existing []string, extras ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, message := range append(append([]string(nil), existing...), extras...) {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

var pointerToken = strings.NewReplacer("~1", "/", "~0", "~")

func splitErrorKey(key string) []string {
	clean := strings.TrimSpace(key)
	clean = strings.TrimLeft(clean, "#$./")
	if clean == "" {
		return nil
	}
	separator := "."
	if strings.Contains(clean, "/") {
		separator = "/"
	}
	clean = strings.NewReplacer("[", separator, "]", "").Replace(clean)

	var segments []string
	for _, part := range strings.Split(clean, separator) {
		if part == "" {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			continue
		}
		segments = append(segments, pointerToken.Replace(part))
	}
	return segments
}

func deepestMatch(segments []string, known map[string]bool) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if known[candidate] {
			return candidate
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sortStrings(keys)
	return keys
}
