package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formcond/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-formcond/pkg/openapi"
	"github.com/goliatone/go-formcond/pkg/schema"
)

// Parser discovers operations with kin-openapi and reads request body
// schemas from the raw document tree. kin-openapi's typed Schema drops
// if/then/else, so it is only trusted for the operation list.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

func New(options pkgopenapi.ParserOptions) *Parser {
	if len(options.MediaTypes) == 0 {
		options.MediaTypes = pkgopenapi.NewParserOptions().MediaTypes
	}
	return &Parser{options: options}
}

// Method order used when listing the operations of one path.
var methodOrder = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "HEAD", "PATCH", "TRACE"}

func (p *Parser) Parse(ctx context.Context, doc schema.Document) (pkgopenapi.Spec, error) {
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Spec{}, err
	}
	if doc.Empty() {
		return pkgopenapi.Spec{}, errors.New("openapi parser: document payload is empty")
	}

	root, err := jsonschema.Decode(doc.Raw())
	if err != nil {
		return pkgopenapi.Spec{}, fmt.Errorf("openapi parser: %w", err)
	}
	if _, ok := root["swagger"]; ok {
		return pkgopenapi.Spec{}, errors.New("openapi parser: swagger 2.0 documents are not supported")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return pkgopenapi.Spec{}, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		if !p.options.AllowPartialDocuments {
			return pkgopenapi.Spec{}, errors.New("openapi parser: document does not contain any paths")
		}
		return pkgopenapi.Spec{Root: root}, nil
	}

	paths := make([]string, 0, spec.Paths.Len())
	for path := range spec.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	rawPaths, _ := root["paths"].(map[string]any)
	out := pkgopenapi.Spec{Root: root}
	for _, path := range paths {
		item := spec.Paths.Value(path)
		if item == nil {
			continue
		}
		rawItem, _ := rawPaths[path].(map[string]any)
		ops := item.Operations()
		for _, method := range methodOrder {
			operation, ok := ops[method]
			if !ok || operation == nil {
				continue
			}
			op, err := p.operation(root, rawItem, path, method, operation)
			if err != nil {
				return pkgopenapi.Spec{}, err
			}
			out.Operations = append(out.Operations, op)
		}
	}
	if len(out.Operations) == 0 && !p.options.AllowPartialDocuments {
		return pkgopenapi.Spec{}, errors.New("openapi parser: no operations extracted")
	}
	return out, nil
}

func (p *Parser) operation(root, rawItem map[string]any, path, method string, operation *openapi3.Operation) (pkgopenapi.Operation, error) {
	id := strings.TrimSpace(operation.OperationID)
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	op := pkgopenapi.Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     strings.TrimSpace(operation.Summary),
		Description: strings.TrimSpace(operation.Description),
		Extensions:  formExtensions(operation.Extensions),
	}

	lower := strings.ToLower(method)
	rawOp, _ := rawItem[lower].(map[string]any)
	body, ok := rawOp["requestBody"].(map[string]any)
	if !ok {
		return op, nil
	}
	pointer := "#/paths/" + escape(path) + "/" + lower + "/requestBody"
	if ref, ok := body["$ref"].(string); ok {
		target, err := jsonschema.LookupPointer(root, ref)
		if err != nil {
			return op, fmt.Errorf("openapi parser: %s request body: %w", id, err)
		}
		if body, ok = target.(map[string]any); !ok {
			return op, fmt.Errorf("openapi parser: %s request body ref %q is not an object", id, ref)
		}
		pointer = ref
	}

	content, _ := body["content"].(map[string]any)
	media, ok := p.pickMediaType(content)
	if !ok {
		return op, nil
	}
	entry, _ := content[media].(map[string]any)
	requestSchema, ok := entry["schema"].(map[string]any)
	if !ok {
		return op, nil
	}
	op.RequestSchema = requestSchema
	op.Pointer = pointer + "/content/" + escape(media) + "/schema"
	return op, nil
}

func (p *Parser) pickMediaType(content map[string]any) (string, bool) {
	if len(content) == 0 {
		return "", false
	}
	for _, media := range p.options.MediaTypes {
		if _, ok := content[media]; ok {
			return media, true
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys[0], true
}

// formExtensions keeps the x-formgen namespace of an operation.
func formExtensions(raw map[string]any) map[string]any {
	var out map[string]any
	for key, value := range raw {
		if key != "x-formgen" && !strings.HasPrefix(key, "x-formgen-") {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[key] = value
	}
	return out
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(token string) string {
	return escaper.Replace(token)
}
