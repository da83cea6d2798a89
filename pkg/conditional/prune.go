package conditional

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formcond/pkg/schema"
)

// Prune returns a copy of data without the keys the effective schema does not
// declare. Nested objects are pruned against their own properties. A node that
// declares no properties at all places no restriction on its data.
func Prune(effective schema.Schema, data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for key, value := range data {
		if effective.Properties == nil {
			out[key] = value
			continue
		}
		prop, ok := effective.Properties[key]
		if !ok {
			continue
		}
		if nested, isMap := value.(map[string]any); isMap && prop.Properties != nil {
			out[key] = Prune(prop, nested)
			continue
		}
		out[key] = value
	}
	return out
}

// Visible reports whether the dotted field path (e.g. "address.zipcode") is
// part of the effective schema of node for data.
func Visible(node schema.Schema, data map[string]any, path string) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}
	current := Resolve(node, data)
	for _, segment := range strings.Split(path, ".") {
		prop, ok := current.Properties[segment]
		if !ok {
			return false
		}
		current = prop
	}
	return true
}

// Hidden lists the dotted paths declared anywhere in node (base properties
// and every branch) that the effective schema for data does not contain.
// Array item fields use the "field[].key" form.
func Hidden(node schema.Schema, data map[string]any) []string {
	effective := Resolve(node, data)
	declared := make(map[string]struct{})
	collectDeclared(node, "", declared)

	var hidden []string
	for path := range declared {
		if !hasPath(effective, path) {
			hidden = append(hidden, path)
		}
	}
	sort.Strings(hidden)
	return hidden
}

func collectDeclared(node schema.Schema, prefix string, out map[string]struct{}) {
	for key, prop := range node.Properties {
		path := joinField(prefix, key)
		out[path] = struct{}{}
		collectDeclared(prop, path, out)
		if prop.Items != nil {
			collectDeclared(*prop.Items, path+itemSuffix, out)
		}
	}
	for _, entry := range node.AllOf {
		collectDeclared(entry, prefix, out)
	}
	if node.Then != nil {
		collectDeclared(*node.Then, prefix, out)
	}
	if node.Else != nil {
		collectDeclared(*node.Else, prefix, out)
	}
}

// hasPath walks a dotted path; a "[]" suffix steps into the array's items,
// matching the field paths the model builder produces.
func hasPath(node schema.Schema, path string) bool {
	current := node
	for _, segment := range strings.Split(path, ".") {
		name, item := strings.CutSuffix(segment, itemSuffix)
		prop, ok := current.Properties[name]
		if !ok {
			return false
		}
		if item {
			if prop.Items == nil {
				return false
			}
			prop = *prop.Items
		}
		current = prop
	}
	return true
}

const itemSuffix = "[]"

func joinField(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
