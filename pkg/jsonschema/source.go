package jsonschema

import "github.com/goliatone/go-formcond/pkg/schema"

// Source and Document alias the shared schema types so callers of this
// package do not need a second import.
type (
	Source     = schema.Source
	SourceKind = schema.SourceKind
	Document   = schema.Document
)

const (
	SourceKindFile = schema.SourceKindFile
	SourceKindFS   = schema.SourceKindFS
	SourceKindURL  = schema.SourceKindURL
)

func SourceFromFile(path string) Source { return schema.SourceFromFile(path) }
func SourceFromFS(name string) Source   { return schema.SourceFromFS(name) }
func SourceFromURL(raw string) Source   { return schema.SourceFromURL(raw) }

func NewDocument(src Source, raw []byte) (Document, error) {
	return schema.NewDocument(src, raw)
}

func MustNewDocument(src Source, raw []byte) Document {
	return schema.MustNewDocument(src, raw)
}
