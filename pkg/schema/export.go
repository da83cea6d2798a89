package schema

import "sort"

// ToJSONSchema converts the node back to JSON Schema keywords. Absent
// keywords are omitted; extensions are emitted verbatim.
func (s Schema) ToJSONSchema() map[string]any {
	out := make(map[string]any)
	for key, value := range s.Extensions {
		out[key] = cloneValue(value)
	}
	setString(out, "type", s.Type)
	setString(out, "format", s.Format)
	setString(out, "title", s.Title)
	setString(out, "description", s.Description)
	setString(out, "pattern", s.Pattern)
	if s.Default != nil {
		out["default"] = cloneValue(s.Default)
	}
	if len(s.Enum) > 0 {
		out["enum"] = cloneValue(s.Enum)
	}
	if s.HasConst {
		out["const"] = cloneValue(s.Const)
	}
	if len(s.Required) > 0 {
		required := append([]string(nil), s.Required...)
		sort.Strings(required)
		out["required"] = required
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	if s.MinLength != nil {
		out["minLength"] = *s.MinLength
	}
	if s.MaxLength != nil {
		out["maxLength"] = *s.MaxLength
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for key, child := range s.Properties {
			props[key] = child.ToJSONSchema()
		}
		out["properties"] = props
	}
	if s.Items != nil {
		out["items"] = s.Items.ToJSONSchema()
	}
	if len(s.AllOf) > 0 {
		entries := make([]any, 0, len(s.AllOf))
		for _, entry := range s.AllOf {
			entries = append(entries, entry.ToJSONSchema())
		}
		out["allOf"] = entries
	}
	for key, node := range map[string]*Schema{"if": s.If, "then": s.Then, "else": s.Else} {
		if node != nil {
			out[key] = node.ToJSONSchema()
		}
	}
	return out
}

func setString(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}
