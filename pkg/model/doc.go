// Package model defines the form model renderers consume. A model is always
// built from an effective schema, the output of the conditional resolver, so
// it lists exactly the fields visible for the current data. Labels come from
// the schema title, else the property key (see WithLabeler). Values under the
// x-formgen extension namespace become Field and FormModel metadata; a curated
// subset (placeholder, helpText, widget, inputType...) is exposed as UIHints.
package model
