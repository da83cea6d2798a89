package model

// Decorator adjusts a built form model before rendering.
type Decorator interface {
	Decorate(*FormModel) error
}

type DecoratorFunc func(*FormModel) error

func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}
