package openapi

import (
	"context"

	"github.com/goliatone/go-formcond/pkg/schema"
)

// Operation is one path + method pair of a document.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	// RequestSchema is the raw request body schema, $refs left in place.
	RequestSchema map[string]any
	// Pointer locates RequestSchema inside the document, for error messages.
	Pointer    string
	Extensions map[string]any
}

// HasRequestBody reports whether the operation accepts a body that can be
// rendered as a form.
func (o Operation) HasRequestBody() bool {
	return o.RequestSchema != nil
}

// Spec is the parser output: the operations plus the decoded document tree
// that request schema refs point into.
type Spec struct {
	Operations []Operation
	Root       map[string]any
}

// Parser lists the operations of an OpenAPI document.
type Parser interface {
	Parse(ctx context.Context, doc schema.Document) (Spec, error)
}

// ParserOptions tunes operation discovery.
type ParserOptions struct {
	// AllowPartialDocuments accepts documents without paths.
	AllowPartialDocuments bool
	// MediaTypes lists request body media types in order of preference. The
	// first content entry is used when none match.
	MediaTypes []string
}

type ParserOption func(*ParserOptions)

func WithPartialDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowPartialDocuments = enabled
	}
}

func WithMediaTypes(types ...string) ParserOption {
	return func(opts *ParserOptions) {
		opts.MediaTypes = append([]string(nil), types...)
	}
}

func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		MediaTypes: []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"},
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
