package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-formcond/pkg/jsonschema"
	"github.com/goliatone/go-formcond/pkg/render"
)

// loadData reads --data and applies every --set on top of it.
func (c *cli) loadData() (map[string]any, error) {
	values := map[string]any{}
	if c.dataPath != "" {
		raw, err := os.ReadFile(c.dataPath)
		if err != nil {
			return nil, fmt.Errorf("read data: %w", err)
		}
		values, err = jsonschema.DecodeValues(raw)
		if err != nil {
			return nil, err
		}
	}
	for _, assignment := range c.sets {
		path, value, err := parseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		render.SetValue(values, path, value)
	}
	return values, nil
}

// parseAssignment splits key=value. Values that parse as JSON keep their
// type so --set count=3 yields a number; anything else is a string.
func parseAssignment(raw string) (string, any, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid --set %q: expected key=value", raw)
	}
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil {
		return key, decoded, nil
	}
	return key, value, nil
}
