package validation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	jsonloader "github.com/goliatone/go-formcond/internal/jsonschema/loader"
	pkgjsonschema "github.com/goliatone/go-formcond/pkg/jsonschema"
	"github.com/goliatone/go-formcond/pkg/schema"
)

// Severity grades an issue. Only errors make a schema invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// SchemaIssue represents a validation error or lint warning with optional
// location metadata.
type SchemaIssue struct {
	Severity Severity `json:"severity"`
	Form     string   `json:"form,omitempty"`
	Path     string   `json:"path,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// SchemaValidationResult captures validation outcomes.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Warnings returns the non-fatal issues.
func (r SchemaValidationResult) Warnings() []SchemaIssue {
	var out []SchemaIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

// Options configures validation behaviour. Adapter defaults to the JSON
// Schema adapter backed by Loader.
type Options struct {
	Adapter         schema.FormatAdapter
	Loader          pkgjsonschema.Loader
	ResolverOptions pkgjsonschema.ResolveOptions
	Normalize       schema.NormalizeOptions
}

// ValidateSchema normalizes raw and lints the conditional keywords of every
// form it declares.
func ValidateSchema(ctx context.Context, src schema.Source, raw []byte, opts Options) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	if src == nil {
		src = pkgjsonschema.SourceFromFS("schema.json")
	}

	doc, err := schema.NewDocument(src, raw)
	if err != nil {
		return invalid(err)
	}

	adapter := opts.Adapter
	if adapter == nil {
		loader := opts.Loader
		if loader == nil {
			loader = jsonloader.New(pkgjsonschema.NewLoaderOptions())
		}
		adapter = pkgjsonschema.NewAdapter(loader, pkgjsonschema.WithResolverOptions(opts.ResolverOptions))
	}

	ir, err := adapter.Normalize(ctx, doc, opts.Normalize)
	if err != nil {
		return invalid(err)
	}

	seen := make(map[string]bool)
	for _, ref := range ir.FormRefs() {
		form, _ := ir.Form(ref.ID)
		for _, issue := range lintConditionals(form.Schema) {
			key := issue.Path + "\x00" + issue.Message
			if seen[key] {
				continue
			}
			seen[key] = true
			issue.Form = ref.ID
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}

func invalid(err error) SchemaValidationResult {
	return SchemaValidationResult{Valid: false, Issues: []SchemaIssue{issueFromError(err)}}
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Severity: SeverityError, Message: "unknown error"}
	}
	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	for _, prefix := range []string{"jsonschema: ", "jsonschema resolver: ", "jsonschema adapter: ", "openapi adapter: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}

	return SchemaIssue{
		Severity: SeverityError,
		Path:     path,
		Field:    fieldPathFromPointer(path),
		Message:  strings.TrimSpace(msg),
	}
}

// lintConditionals reports dangling conditional keywords and if constraints
// on keys no properties block declares.
func lintConditionals(root schema.Schema) []SchemaIssue {
	declared := make(map[string]bool)
	collectDeclared(root, declared)

	var issues []SchemaIssue
	var walk func(node schema.Schema, path string)
	walk = func(node schema.Schema, path string) {
		switch {
		case node.If != nil && node.Then == nil && node.Else == nil:
			issues = append(issues, warning(path+"/if", "if has neither then nor else"))
		case node.If == nil && node.Then != nil:
			issues = append(issues, warning(path+"/then", "then without if"))
		}
		if node.If == nil && node.Else != nil {
			issues = append(issues, warning(path+"/else", "else without if"))
		}
		if node.If != nil {
			for _, key := range sortedKeys(node.If.Properties) {
				if !declared[key] {
					issues = append(issues, warning(path+"/if/properties/"+escapePointer(key), fmt.Sprintf("if constrains undeclared property %q", key)))
				}
			}
		}

		for _, key := range sortedKeys(node.Properties) {
			walk(node.Properties[key], path+"/properties/"+escapePointer(key))
		}
		if node.Items != nil {
			walk(*node.Items, path+"/items")
		}
		for idx, entry := range node.AllOf {
			walk(entry, path+"/allOf/"+strconv.Itoa(idx))
		}
		if node.Then != nil {
			walk(*node.Then, path+"/then")
		}
		if node.Else != nil {
			walk(*node.Else, path+"/else")
		}
	}
	walk(root, "#")
	return issues
}

// collectDeclared gathers property names from every properties block except
// those inside if constraints.
func collectDeclared(node schema.Schema, declared map[string]bool) {
	for key, child := range node.Properties {
		declared[key] = true
		collectDeclared(child, declared)
	}
	if node.Items != nil {
		collectDeclared(*node.Items, declared)
	}
	for _, entry := range node.AllOf {
		collectDeclared(entry, declared)
	}
	if node.Then != nil {
		collectDeclared(*node.Then, declared)
	}
	if node.Else != nil {
		collectDeclared(*node.Else, declared)
	}
}

func warning(path, message string) SchemaIssue {
	return SchemaIssue{
		Severity: SeverityWarning,
		Path:     path,
		Field:    fieldPathFromPointer(path),
		Message:  message,
	}
}

func extractJSONPointer(message string) string {
	if message == "" {
		return ""
	}
	if idx := strings.LastIndex(message, " at "); idx >= 0 {
		candidate := strings.TrimSpace(message[idx+4:])
		if strings.HasPrefix(candidate, "#") {
			return trimPointer(candidate)
		}
	}
	if idx := strings.LastIndex(message, "#/"); idx >= 0 {
		return trimPointer(strings.TrimSpace(message[idx:]))
	}
	return ""
}

func trimPointer(pointer string) string {
	return strings.TrimSpace(strings.TrimRight(pointer, ".)];,"))
}

// fieldPathFromPointer turns a schema pointer into the dotted form path it
// describes; keyword segments are dropped.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		switch parts[idx] {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescapePointer(parts[idx+1]))
				idx++
			}
		case "items":
			out = append(out, "items")
		case "oneOf", "anyOf", "allOf":
			if idx+1 < len(parts) && isNumeric(parts[idx+1]) {
				idx++
			}
		case "$defs", "definitions":
			if idx+1 < len(parts) {
				idx++
			}
		case "if":
			// constraint paths name the sibling field, not an if field
			if idx+2 < len(parts) && parts[idx+1] == "properties" {
				return strings.Join(append(out, unescapePointer(parts[idx+2])), ".")
			}
			return strings.Join(out, ".")
		case "then", "else", "":
		default:
			out = append(out, unescapePointer(parts[idx]))
		}
	}
	return strings.Join(out, ".")
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(value string) string   { return pointerEscaper.Replace(value) }
func unescapePointer(value string) string { return pointerUnescaper.Replace(value) }

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sortedKeys(props map[string]schema.Schema) []string {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
