package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted next to the schema fields.
type HiddenField struct {
	Name  string
	Value string
}

func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// SortedHiddenFields returns the fields sorted by name, dropping blank names.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	var out []HiddenField
	for name, value := range fields {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, HiddenField{Name: trimmed, Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SubmissionMethod maps a form method onto what an HTML form can send. The
// second result is the value for a _method override input, empty when none
// is needed.
func SubmissionMethod(method string) (string, string) {
	upper := strings.ToUpper(strings.TrimSpace(method))
	switch upper {
	case "", "POST":
		return "post", ""
	case "GET":
		return "get", ""
	default:
		return "post", upper
	}
}

func sortStrings(values []string) {
	sort.Strings(values)
}
