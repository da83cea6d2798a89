// Package conditional computes the effective schema of a form: the schema
// that remains once `if`/`then`/`else` triples, including triples nested under
// `allOf`, have been evaluated against the current form data.
//
// Evaluation is a pure function of the schema and the data. A triple whose
// `if` matches contributes its `then` properties; otherwise it contributes its
// `else` properties. Contributions are merged additively into the node's own
// properties. A field missing from the data never satisfies a `const` or
// `enum` constraint, so unfilled forms render their `else` branches.
package conditional
