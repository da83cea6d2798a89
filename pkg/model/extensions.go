package model

import internalmodel "github.com/goliatone/go-formcond/internal/model"

// ParseUIExtensions extracts x-formgen metadata and the UI hint subset of it.
func ParseUIExtensions(ext map[string]any) (map[string]string, map[string]string) {
	return internalmodel.ParseUIExtensions(ext)
}
