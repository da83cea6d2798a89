package conditional

import (
	"maps"
	"slices"
	"sort"
	"strconv"

	"github.com/goliatone/go-formcond/pkg/schema"
)

// Branch names the part of a triple that contributed properties.
type Branch string

const (
	BranchThen Branch = "then"
	BranchElse Branch = "else"
	// BranchNone means the selected branch was missing, so nothing was added.
	BranchNone Branch = "none"
)

// Decision records how one `if` was evaluated.
type Decision struct {
	// Path is a JSON pointer to the node that owns the triple, e.g.
	// "#/allOf/1" or "#/properties/address".
	Path    string   `json:"path"`
	Matched bool     `json:"matched"`
	Branch  Branch   `json:"branch"`
	Added   []string `json:"added,omitempty"`
}

// Resolution is the output of Evaluate.
type Resolution struct {
	Schema    schema.Schema `json:"schema"`
	Decisions []Decision    `json:"decisions,omitempty"`
}

// Resolve returns the effective schema of node for data. node is not
// modified; the result shares no mutable state with it.
func Resolve(node schema.Schema, data map[string]any) schema.Schema {
	return resolveNode(node, data, "#", nil)
}

// Explain returns the decisions Resolve would take, in evaluation order.
func Explain(node schema.Schema, data map[string]any) []Decision {
	return Evaluate(node, data).Decisions
}

// Evaluate resolves node and records every conditional decision.
func Evaluate(node schema.Schema, data map[string]any) Resolution {
	var decisions []Decision
	resolved := resolveNode(node, data, "#", &decisions)
	return Resolution{Schema: resolved, Decisions: decisions}
}

func resolveNode(node schema.Schema, data map[string]any, path string, trace *[]Decision) schema.Schema {
	out := node.Clone()
	out.If, out.Then, out.Else, out.AllOf = nil, nil, nil, nil

	if node.If != nil {
		matched := Matches(*node.If, data)
		branch, name := node.Else, BranchElse
		if matched {
			branch, name = node.Then, BranchThen
		}

		idx := -1
		if trace != nil {
			if branch == nil {
				name = BranchNone
			}
			*trace = append(*trace, Decision{Path: path, Matched: matched, Branch: name})
			idx = len(*trace) - 1
		}

		if branch != nil {
			contribution := resolveNode(*branch, data, path+"/"+string(name), trace)
			added := mergeInto(&out, contribution)
			if idx >= 0 {
				(*trace)[idx].Added = added
			}
		}
	}

	for i, entry := range node.AllOf {
		contribution := resolveNode(entry, data, path+"/allOf/"+strconv.Itoa(i), trace)
		mergeInto(&out, contribution)
	}

	for _, key := range out.PropertyNames() {
		prop := out.Properties[key]
		if !needsResolution(prop) {
			continue
		}
		nested, _ := data[key].(map[string]any)
		out.Properties[key] = resolveNode(prop, nested, path+"/properties/"+escapePointer(key), trace)
	}

	// Items is one template shared by every element, so it is resolved as a
	// blank item would be: against no data.
	if out.Items != nil && needsResolution(*out.Items) {
		item := resolveNode(*out.Items, nil, path+"/items", trace)
		out.Items = &item
	}

	return out
}

func needsResolution(node schema.Schema) bool {
	if node.HasConditionals() {
		return true
	}
	for _, prop := range node.Properties {
		if needsResolution(prop) {
			return true
		}
	}
	return node.Items != nil && needsResolution(*node.Items)
}

// mergeInto adds the properties and required keys of src to dst and returns
// the property keys that were not present before, sorted.
func mergeInto(dst *schema.Schema, src schema.Schema) []string {
	var added []string
	if len(src.Properties) > 0 && dst.Properties == nil {
		dst.Properties = make(map[string]schema.Schema, len(src.Properties))
	}
	for key, prop := range src.Properties {
		existing, ok := dst.Properties[key]
		if !ok {
			dst.Properties[key] = prop
			added = append(added, key)
			continue
		}
		dst.Properties[key] = mergeSchema(existing, prop)
	}
	dst.Required = unionStrings(dst.Required, src.Required)
	sort.Strings(added)
	return added
}

// mergeSchema overlays incoming on base. Non-zero scalar keywords of incoming
// win, properties and required lists accumulate, and conditionals from
// incoming are kept as an extra allOf entry so neither side's triple is lost.
func mergeSchema(base, incoming schema.Schema) schema.Schema {
	out := base
	if incoming.Type != "" {
		out.Type = incoming.Type
	}
	if incoming.Format != "" {
		out.Format = incoming.Format
	}
	if incoming.Title != "" {
		out.Title = incoming.Title
	}
	if incoming.Description != "" {
		out.Description = incoming.Description
	}
	if incoming.Default != nil {
		out.Default = incoming.Default
	}
	if incoming.Enum != nil {
		out.Enum = incoming.Enum
	}
	if incoming.HasConst {
		out.Const, out.HasConst = incoming.Const, true
	}
	if incoming.Items != nil {
		out.Items = incoming.Items
	}
	if incoming.Minimum != nil {
		out.Minimum = incoming.Minimum
	}
	if incoming.Maximum != nil {
		out.Maximum = incoming.Maximum
	}
	if incoming.MinLength != nil {
		out.MinLength = incoming.MinLength
	}
	if incoming.MaxLength != nil {
		out.MaxLength = incoming.MaxLength
	}
	if incoming.Pattern != "" {
		out.Pattern = incoming.Pattern
	}
	if len(incoming.Extensions) > 0 {
		ext := make(map[string]any, len(base.Extensions)+len(incoming.Extensions))
		maps.Copy(ext, base.Extensions)
		maps.Copy(ext, incoming.Extensions)
		out.Extensions = ext
	}
	if len(incoming.Properties) > 0 {
		props := make(map[string]schema.Schema, len(base.Properties)+len(incoming.Properties))
		maps.Copy(props, base.Properties)
		out.Properties = props
		mergeInto(&out, schema.Schema{Properties: incoming.Properties})
	}
	out.Required = unionStrings(base.Required, incoming.Required)
	if len(incoming.AllOf) > 0 {
		out.AllOf = append(slices.Clone(base.AllOf), incoming.AllOf...)
	}
	if incoming.If != nil || incoming.Then != nil || incoming.Else != nil {
		out.AllOf = append(slices.Clone(out.AllOf), schema.Schema{If: incoming.If, Then: incoming.Then, Else: incoming.Else})
	}
	return out
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := slices.Clone(a)
	for _, item := range b {
		if !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

func escapePointer(segment string) string {
	out := make([]byte, 0, len(segment))
	for i := 0; i < len(segment); i++ {
		switch segment[i] {
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, segment[i])
		}
	}
	return string(out)
}
