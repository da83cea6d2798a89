package model

// Options configures a Builder. pkg/model assembles them from functional
// options.
type Options struct {
	// Labeler derives a label from the property key when the schema has no
	// title.
	Labeler func(string) string
}

func defaultOptions() Options {
	return Options{Labeler: RawLabeler}
}
