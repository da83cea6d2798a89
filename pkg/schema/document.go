package schema

import (
	"bytes"
	"errors"
)

// Document pairs a raw schema payload with the Source it was read from.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw and binds it to src. Both are required.
func NewDocument(src Source, raw []byte) (Document, error) {
	switch {
	case src == nil:
		return Document{}, errors.New("schema: document source is required")
	case len(bytes.TrimSpace(raw)) == 0:
		return Document{}, errors.New("schema: document payload is empty")
	}
	return Document{source: src, raw: bytes.Clone(raw)}, nil
}

// MustNewDocument is NewDocument for fixtures; it panics on invalid input.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload so callers cannot mutate the document.
func (d Document) Raw() []byte {
	return bytes.Clone(d.raw)
}

// Location reports where the document came from, or "" for a zero Document.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Empty reports whether the document carries no payload.
func (d Document) Empty() bool {
	return len(d.raw) == 0
}
