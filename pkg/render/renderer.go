package render

import (
	"context"

	"github.com/goliatone/go-formcond/pkg/model"
)

// Renderer turns a form model into an output format (HTML, a terminal
// session transcript, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}
