package model

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formcond/pkg/schema"
)

var errFormIDMissing = errors.New("model builder: form id is required")

func validateForm(form schema.Form, effective schema.Schema) error {
	if form.ID == "" {
		return errFormIDMissing
	}
	switch effective.Type {
	case "", "object":
	default:
		return fmt.Errorf("model builder: form %q: root schema must be an object, got %q", form.ID, effective.Type)
	}
	if err := validateSchema("", effective); err != nil {
		return fmt.Errorf("model builder: form %q: %w", form.ID, err)
	}
	return nil
}

func validateSchema(path string, node schema.Schema) error {
	if node.Type == "array" && node.Items == nil {
		return fmt.Errorf("array field %q requires items", path)
	}
	for _, name := range node.PropertyNames() {
		if err := validateSchema(joinPath(path, name), node.Properties[name]); err != nil {
			return err
		}
	}
	if node.Items != nil {
		return validateSchema(path+"[]", *node.Items)
	}
	return nil
}
