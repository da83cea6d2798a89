package jsonschema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formcond/pkg/schema"
)

// Keywords turned into schema.Schema fields.
var supportedSchemaKeys = map[string]struct{}{
	"$schema":     {},
	"$id":         {},
	"$defs":       {},
	"definitions": {},
	"$ref":        {},
	"$anchor":     {},
	"type":        {},
	"properties":  {},
	"required":    {},
	"items":       {},
	"allOf":       {},
	"if":          {},
	"then":        {},
	"else":        {},
	"enum":        {},
	"const":       {},
	"title":       {},
	"description": {},
	"default":     {},
	"minimum":     {},
	"maximum":     {},
	"minLength":   {},
	"maxLength":   {},
	"pattern":     {},
	"format":      {},
}

// Keywords accepted in documents but not represented: annotations and
// validation-only constraints that do not change which fields are shown.
var ignoredSchemaKeys = map[string]struct{}{
	"$comment":             {},
	"examples":             {},
	"readOnly":             {},
	"writeOnly":            {},
	"deprecated":           {},
	"additionalProperties": {},
	"exclusiveMinimum":     {},
	"exclusiveMaximum":     {},
	"multipleOf":           {},
	"minItems":             {},
	"maxItems":             {},
	"uniqueItems":          {},
	"minProperties":        {},
	"maxProperties":        {},
	// OpenAPI schema object additions.
	"nullable":      {},
	"example":       {},
	"discriminator": {},
	"xml":           {},
	"externalDocs":  {},
}

// NormalizeSchema converts a decoded, $ref-free schema object into the typed
// tree. path is the JSON pointer used in error messages, normally "#".
func NormalizeSchema(node any, path string) (schema.Schema, error) {
	if path == "" {
		path = "#"
	}
	return normalizeNode(node, path)
}

func normalizeNode(node any, path string) (schema.Schema, error) {
	switch typed := node.(type) {
	case nil:
		return schema.Schema{}, fmt.Errorf("jsonschema: schema is nil at %s", path)
	case bool:
		if typed {
			return schema.Schema{}, nil
		}
		return schema.Schema{}, fmt.Errorf("jsonschema: false schema is not supported at %s", path)
	case map[string]any:
		return normalizeObject(typed, path)
	default:
		return schema.Schema{}, fmt.Errorf("jsonschema: schema must be an object at %s", path)
	}
}

func normalizeObject(payload map[string]any, path string) (schema.Schema, error) {
	if ref := strings.TrimSpace(readString(payload, "$ref")); ref != "" {
		return schema.Schema{}, fmt.Errorf("jsonschema: unresolved $ref %q at %s", ref, path)
	}
	if err := validateKeywords(payload, path); err != nil {
		return schema.Schema{}, err
	}

	typ, err := readType(payload["type"], path)
	if err != nil {
		return schema.Schema{}, err
	}

	out := schema.Schema{
		Type:        typ,
		Title:       strings.TrimSpace(readString(payload, "title")),
		Description: strings.TrimSpace(readString(payload, "description")),
		Format:      strings.TrimSpace(readString(payload, "format")),
		Default:     payload["default"],
		Extensions:  extractExtensions(payload),
	}
	if value, ok := payload["const"]; ok {
		out.Const, out.HasConst = value, true
	}

	if raw, ok := payload["enum"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: enum must be an array at %s", path)
		}
		out.Enum = append([]any{}, list...)
	}

	if raw, ok := payload["required"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: required must be an array at %s", path)
		}
		out.Required = make([]string, 0, len(list))
		for idx, item := range list {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return schema.Schema{}, fmt.Errorf("jsonschema: required[%d] must be a string at %s", idx, path)
			}
			out.Required = append(out.Required, name)
		}
	}

	if out.Minimum, err = readFloat(payload, "minimum", path); err != nil {
		return schema.Schema{}, err
	}
	if out.Maximum, err = readFloat(payload, "maximum", path); err != nil {
		return schema.Schema{}, err
	}
	if out.MinLength, err = readInt(payload, "minLength", path); err != nil {
		return schema.Schema{}, err
	}
	if out.MaxLength, err = readInt(payload, "maxLength", path); err != nil {
		return schema.Schema{}, err
	}
	if raw, ok := payload["pattern"]; ok {
		pattern, ok := raw.(string)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: pattern must be a string at %s", path)
		}
		out.Pattern = pattern
	}

	for _, key := range []string{"$defs", "definitions"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		defs, ok := raw.(map[string]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: %s must be an object at %s", key, path)
		}
		for _, name := range sortedKeys(defs) {
			if _, err := normalizeNode(defs[name], joinPath(path, key, name)); err != nil {
				return schema.Schema{}, err
			}
		}
	}

	if raw, ok := payload["properties"]; ok {
		props, ok := raw.(map[string]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: properties must be an object at %s", path)
		}
		out.Properties = make(map[string]schema.Schema, len(props))
		for _, name := range sortedKeys(props) {
			converted, err := normalizeNode(props[name], joinPath(path, "properties", name))
			if err != nil {
				return schema.Schema{}, err
			}
			out.Properties[name] = converted
		}
	}

	if raw, ok := payload["items"]; ok {
		if _, isList := raw.([]any); isList {
			return schema.Schema{}, fmt.Errorf("jsonschema: tuple items are not supported at %s", path)
		}
		items, err := normalizeNode(raw, joinPath(path, "items"))
		if err != nil {
			return schema.Schema{}, err
		}
		out.Items = &items
	}

	if raw, ok := payload["allOf"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: allOf must be an array at %s", path)
		}
		out.AllOf = make([]schema.Schema, 0, len(list))
		for idx, entry := range list {
			converted, err := normalizeNode(entry, joinPath(path, "allOf", strconv.Itoa(idx)))
			if err != nil {
				return schema.Schema{}, err
			}
			out.AllOf = append(out.AllOf, converted)
		}
	}

	for _, key := range []string{"if", "then", "else"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		converted, err := normalizeNode(raw, joinPath(path, key))
		if err != nil {
			return schema.Schema{}, err
		}
		switch key {
		case "if":
			out.If = &converted
		case "then":
			out.Then = &converted
		case "else":
			out.Else = &converted
		}
	}

	return out, nil
}

func validateKeywords(payload map[string]any, path string) error {
	for _, key := range sortedKeys(payload) {
		if isVendorExtension(key) {
			continue
		}
		if _, ok := supportedSchemaKeys[key]; ok {
			continue
		}
		if _, ok := ignoredSchemaKeys[key]; ok {
			continue
		}
		return fmt.Errorf("jsonschema: unsupported keyword %q at %s", key, path)
	}
	return nil
}

// readType accepts a single type or a type list; lists collapse to their first
// non-null member since a form control has one kind.
func readType(raw any, path string) (string, error) {
	var value string
	switch typed := raw.(type) {
	case nil:
		return "", nil
	case string:
		value = strings.TrimSpace(typed)
	case []any:
		for _, item := range typed {
			name, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("jsonschema: type list must contain strings at %s", path)
			}
			if name != "null" {
				value = name
				break
			}
		}
	default:
		return "", fmt.Errorf("jsonschema: type must be a string or array at %s", path)
	}
	if value != "" && !isAllowedType(value) {
		return "", fmt.Errorf("jsonschema: unsupported type %q at %s", value, path)
	}
	return value, nil
}

func isAllowedType(value string) bool {
	switch value {
	case "object", "array", "string", "integer", "number", "boolean", "null":
		return true
	default:
		return false
	}
}

func readFloat(payload map[string]any, key, path string) (*float64, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok {
		return nil, fmt.Errorf("jsonschema: %s must be a number at %s", key, path)
	}
	return &value, nil
}

func readInt(payload map[string]any, key, path string) (*int, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok || value != math.Trunc(value) {
		return nil, fmt.Errorf("jsonschema: %s must be an integer at %s", key, path)
	}
	n := int(value)
	return &n, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func readString(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func extractExtensions(payload map[string]any) map[string]any {
	var extensions map[string]any
	for key, value := range payload {
		if !isVendorExtension(key) {
			continue
		}
		if extensions == nil {
			extensions = make(map[string]any)
		}
		extensions[key] = value
	}
	return extensions
}

func joinPath(path string, segments ...string) string {
	if path == "" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path += "/" + escapeJSONPointer(segment)
	}
	return path
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeJSONPointer(value string) string {
	return pointerEscaper.Replace(value)
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
