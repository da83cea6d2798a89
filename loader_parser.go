package formcond

import (
	jsonloader "github.com/goliatone/go-formcond/internal/jsonschema/loader"
	openapiparser "github.com/goliatone/go-formcond/internal/openapi/parser"
	"github.com/goliatone/go-formcond/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-formcond/pkg/openapi"
)

// NewLoader constructs the built-in document loader while keeping the
// concrete type hidden from consumers.
func NewLoader(options ...jsonschema.LoaderOption) jsonschema.Loader {
	return jsonloader.New(jsonschema.NewLoaderOptions(options...))
}

// NewParser constructs the built-in OpenAPI parser.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return openapiparser.New(pkgopenapi.NewParserOptions(options...))
}
