package model

import (
	"github.com/goliatone/go-formcond/internal/model"
	"github.com/goliatone/go-formcond/pkg/schema"
)

// Builder converts a resolved schema into a form model.
type Builder interface {
	Build(form schema.Form, effective schema.Schema) (FormModel, error)
}

type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler func(string) string
}

// WithLabeler replaces the label used for properties without a title. The
// default keeps the property key.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return model.New(model.Options{Labeler: cfg.labeler})
}

// HumanLabeler splits snake_case and camelCase keys into capitalized words.
func HumanLabeler(name string) string {
	return model.HumanLabeler(name)
}
