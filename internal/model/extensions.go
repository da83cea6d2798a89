package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const extensionNamespace = "x-formgen"

// Metadata keys that renderers read as presentation hints.
var uiHintKeys = map[string]struct{}{
	"cssClass":     {},
	"helpText":     {},
	"hideLabel":    {},
	"inputType":    {},
	"label":        {},
	"order":        {},
	"placeholder":  {},
	"section":      {},
	"submitLabel":  {},
	"widget":       {},
	"successLabel": {},
}

// AllowedUIHintKeys lists the recognised hint keys, sorted.
func AllowedUIHintKeys() []string {
	keys := make([]string, 0, len(uiHintKeys))
	for key := range uiHintKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ParseUIExtensions returns the x-formgen metadata of a schema node and the
// subset of it that counts as UI hints. Both maps are nil when empty.
func ParseUIExtensions(ext map[string]any) (map[string]string, map[string]string) {
	metadata := metadataFromExtensions(ext)
	return metadata, filterUIHints(metadata)
}

// metadataFromExtensions flattens both spellings of the namespace:
// "x-formgen": {"widget": "select"} and "x-formgen-widget": "select".
// The nested forms list is document level and skipped.
func metadataFromExtensions(ext map[string]any) map[string]string {
	result := make(map[string]string)
	for key, value := range ext {
		switch {
		case key == extensionNamespace:
			nested, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for nestedKey, nestedValue := range nested {
				if nestedKey == "forms" {
					continue
				}
				if str, ok := CanonicalizeExtensionValue(nestedValue); ok {
					result[nestedKey] = str
				}
			}
		case strings.HasPrefix(key, extensionNamespace+"-"):
			if str, ok := CanonicalizeExtensionValue(value); ok {
				result[strings.TrimPrefix(key, extensionNamespace+"-")] = str
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func filterUIHints(metadata map[string]string) map[string]string {
	var hints map[string]string
	for key, value := range metadata {
		if _, ok := uiHintKeys[key]; !ok {
			continue
		}
		if hints == nil {
			hints = make(map[string]string)
		}
		hints[key] = value
	}
	return hints
}

// CanonicalizeExtensionValue renders scalar extension values as strings and
// composite ones as JSON. Empty values are rejected.
func CanonicalizeExtensionValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case map[string]any:
		return marshalNonEmpty(len(v), v)
	case []any:
		return marshalNonEmpty(len(v), v)
	default:
		return "", false
	}
}

func marshalNonEmpty(size int, value any) (string, bool) {
	if size == 0 {
		return "", false
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(payload), true
}
