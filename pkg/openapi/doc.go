// Package openapi turns the request bodies of OpenAPI 3 operations into
// forms. Operation discovery is delegated to a Parser (the kin-openapi backed
// implementation lives in internal/openapi/parser); request schemas are taken
// from the raw document so if/then/else and allOf reach the conditional
// resolver untouched.
package openapi
