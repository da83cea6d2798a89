package formcond

import (
	"io/fs"

	"github.com/goliatone/go-formcond/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can copy or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
