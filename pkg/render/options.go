package render

import (
	"context"

	"github.com/goliatone/go-formcond/pkg/model"
)

// RefreshFunc rebuilds the form model for new values. Interactive renderers
// call it after every answer so conditional fields follow the data.
type RefreshFunc func(ctx context.Context, values map[string]any) (model.FormModel, error)

// RenderOptions carry per-request data.
type RenderOptions struct {
	// Method overrides the form method. Verbs other than GET and POST are sent
	// as POST plus a hidden _method input.
	Method string
	// Values prefills controls. Nested objects are nested maps, looked up by
	// field path.
	Values map[string]any
	// Errors are validation messages keyed by field path or JSON pointer; see
	// MapErrors.
	Errors map[string][]string
	// Hidden adds hidden inputs (csrf tokens, versions).
	Hidden map[string]string
	// Refresh is required by interactive renderers and ignored by static ones.
	Refresh RefreshFunc
}
