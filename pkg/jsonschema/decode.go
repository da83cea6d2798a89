package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Decode parses a JSON or YAML document into a generic map. JSON is tried
// first; YAML mappings are converted so every nested object is a
// map[string]any, matching what encoding/json produces.
func Decode(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("jsonschema: document is empty")
	}

	if trimmed[0] == '{' {
		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("jsonschema: parse json: %w", err)
		}
		if payload == nil {
			return nil, errors.New("jsonschema: document is null")
		}
		return payload, nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("jsonschema: parse yaml: %w", err)
	}
	normalized, err := normalizeYAML(doc)
	if err != nil {
		return nil, err
	}
	payload, ok := normalized.(map[string]any)
	if !ok || payload == nil {
		return nil, errors.New("jsonschema: document must be an object")
	}
	return payload, nil
}

// DecodeValues parses form data supplied as JSON or YAML. An empty payload
// yields an empty map.
func DecodeValues(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	values, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: decode values: %w", err)
	}
	return values, nil
}

func normalizeYAML(value any) (any, error) {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			converted, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("jsonschema: yaml key %v is not a string", key)
			}
			converted, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			converted, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	default:
		return typed, nil
	}
}
