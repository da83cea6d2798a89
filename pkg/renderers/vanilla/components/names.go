package components

import "github.com/goliatone/go-formcond/pkg/widgets"

// Built-in component names. Widget resolution returns the same names.
const (
	NameInput    = widgets.WidgetInput
	NameTextarea = widgets.WidgetTextarea
	NameSelect   = widgets.WidgetSelect
	NameBoolean  = widgets.WidgetBoolean
	NameObject   = widgets.WidgetObject
	NameArray    = widgets.WidgetArray
)
