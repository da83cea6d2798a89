package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultMaxDocumentBytes = int64(5 << 20)
	defaultMaxDocuments     = 128
	defaultMaxRefDepth      = 64
)

// Keywords whose value is a single subschema.
var subschemaKeys = map[string]bool{
	"items": true,
	"if":    true,
	"then":  true,
	"else":  true,
	"not":   true,
}

// Keywords whose value is a name -> subschema map.
var subschemaMapKeys = map[string]bool{
	"properties":  true,
	"$defs":       true,
	"definitions": true,
}

// Keywords whose value is a list of subschemas.
var subschemaListKeys = map[string]bool{
	"allOf": true,
	"anyOf": true,
	"oneOf": true,
}

// ResolveOptions bounds $ref expansion.
type ResolveOptions struct {
	// AllowHTTPRefs enables refs pointing at http(s) documents.
	AllowHTTPRefs bool
	// AllowPathTraversal lets relative refs leave the root document's directory.
	AllowPathTraversal bool
	MaxDocumentBytes   int64
	MaxDocuments       int
	MaxRefDepth        int
}

func (o ResolveOptions) withDefaults() ResolveOptions {
	if o.MaxDocumentBytes <= 0 {
		o.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if o.MaxDocuments <= 0 {
		o.MaxDocuments = defaultMaxDocuments
	}
	if o.MaxRefDepth <= 0 {
		o.MaxRefDepth = defaultMaxRefDepth
	}
	return o
}

// Resolver inlines $ref targets so the normalizer sees a self-contained tree.
// Conditional branches are walked like any other subschema, so refs under
// if/then/else and allOf are expanded too.
type Resolver struct {
	loader Loader
	opts   ResolveOptions
}

func NewResolver(loader Loader, opts ResolveOptions) *Resolver {
	return &Resolver{loader: loader, opts: opts.withDefaults()}
}

// Resolve expands every $ref reachable from payload. doc supplies the base
// location for relative refs; payload is not modified.
func (r *Resolver) Resolve(ctx context.Context, doc Document, payload map[string]any) (map[string]any, error) {
	if r == nil {
		return nil, errors.New("jsonschema resolver: resolver is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema resolver: source is nil")
	}
	if payload == nil {
		return nil, errors.New("jsonschema resolver: payload is nil")
	}
	if int64(len(doc.Raw())) > r.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", len(doc.Raw()))
	}

	sess := &refSession{
		loader: r.loader,
		opts:   r.opts,
		docs:   make(map[string]*refDocument),
		active: make(map[string]bool),
	}
	root, err := sess.register(doc.Source(), payload)
	if err != nil {
		return nil, err
	}
	sess.rootDir = root.dir

	expanded, err := sess.expand(ctx, root, payload)
	if err != nil {
		return nil, err
	}
	out, ok := expanded.(map[string]any)
	if !ok {
		return nil, errors.New("jsonschema resolver: resolved root is not an object")
	}
	return out, nil
}

type refSession struct {
	loader  Loader
	opts    ResolveOptions
	docs    map[string]*refDocument
	rootDir string
	chain   []string
	active  map[string]bool
}

type refDocument struct {
	key     string
	kind    SourceKind
	loc     string
	dir     string
	body    map[string]any
	anchors map[string]string
}

func (s *refSession) register(src Source, body map[string]any) (*refDocument, error) {
	key, loc, dir, err := canonicalSource(src)
	if err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := collectAnchors(body, "", anchors); err != nil {
		return nil, err
	}
	doc := &refDocument{key: key, kind: src.Kind(), loc: loc, dir: dir, body: body, anchors: anchors}
	s.docs[key] = doc
	return doc, nil
}

func (s *refSession) expand(ctx context.Context, doc *refDocument, node any) (any, error) {
	switch typed := node.(type) {
	case map[string]any:
		if ref, ok := typed["$ref"].(string); ok && strings.TrimSpace(ref) != "" {
			return s.follow(ctx, doc, strings.TrimSpace(ref), typed)
		}
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			expanded, err := s.expandKeyword(ctx, doc, key, value)
			if err != nil {
				return nil, err
			}
			out[key] = expanded
		}
		return out, nil
	default:
		return node, nil
	}
}

func (s *refSession) expandKeyword(ctx context.Context, doc *refDocument, key string, value any) (any, error) {
	switch {
	case subschemaKeys[key]:
		return s.expand(ctx, doc, value)
	case subschemaMapKeys[key]:
		members, ok := value.(map[string]any)
		if !ok {
			return value, nil
		}
		out := make(map[string]any, len(members))
		for name, member := range members {
			expanded, err := s.expand(ctx, doc, member)
			if err != nil {
				return nil, err
			}
			out[name] = expanded
		}
		return out, nil
	case subschemaListKeys[key]:
		entries, ok := value.([]any)
		if !ok {
			return value, nil
		}
		out := make([]any, len(entries))
		for idx, entry := range entries {
			expanded, err := s.expand(ctx, doc, entry)
			if err != nil {
				return nil, err
			}
			out[idx] = expanded
		}
		return out, nil
	default:
		return value, nil
	}
}

func (s *refSession) follow(ctx context.Context, doc *refDocument, ref string, node map[string]any) (any, error) {
	target, key, value, err := s.lookup(ctx, doc, ref)
	if err != nil {
		return nil, err
	}
	if len(s.chain) >= s.opts.MaxRefDepth {
		return nil, fmt.Errorf("jsonschema resolver: ref depth exceeds %d", s.opts.MaxRefDepth)
	}
	if s.active[key] {
		return nil, fmt.Errorf("jsonschema resolver: ref cycle detected at %s", ref)
	}
	merged, err := overlayRefSiblings(value, node)
	if err != nil {
		return nil, err
	}

	s.chain = append(s.chain, key)
	s.active[key] = true
	expanded, err := s.expand(ctx, target, merged)
	s.chain = s.chain[:len(s.chain)-1]
	delete(s.active, key)
	return expanded, err
}

// lookup returns the document holding ref, a key unique to the target node and
// a private copy of the target.
func (s *refSession) lookup(ctx context.Context, doc *refDocument, ref string) (*refDocument, string, any, error) {
	location, fragment, _ := strings.Cut(ref, "#")
	target := doc
	if location != "" {
		src, err := s.locate(doc, location)
		if err != nil {
			return nil, "", nil, err
		}
		if target, err = s.fetch(ctx, src); err != nil {
			return nil, "", nil, err
		}
	}
	value, err := target.fragment(fragment)
	if err != nil {
		return nil, "", nil, err
	}
	return target, target.key + "#" + fragment, value, nil
}

func (s *refSession) locate(doc *refDocument, location string) (Source, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: invalid ref %q", location)
	}
	switch parsed.Scheme {
	case "http", "https":
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", location)
		}
		return SourceFromURL(parsed.String()), nil
	case "file":
		return SourceFromFile(parsed.Path), nil
	case "":
	default:
		return nil, fmt.Errorf("jsonschema resolver: unsupported ref scheme %q", parsed.Scheme)
	}

	switch doc.kind {
	case SourceKindFile:
		resolved, err := s.confineFile(doc.dir, parsed.Path)
		if err != nil {
			return nil, err
		}
		return SourceFromFile(resolved), nil
	case SourceKindFS:
		resolved, err := s.confineFS(doc.dir, parsed.Path)
		if err != nil {
			return nil, err
		}
		return SourceFromFS(resolved), nil
	case SourceKindURL:
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", location)
		}
		base, err := url.Parse(doc.loc)
		if err != nil {
			return nil, err
		}
		return SourceFromURL(base.ResolveReference(parsed).String()), nil
	default:
		return nil, errors.New("jsonschema resolver: unsupported source kind")
	}
}

func (s *refSession) fetch(ctx context.Context, src Source) (*refDocument, error) {
	key, _, _, err := canonicalSource(src)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.docs[key]; ok {
		return cached, nil
	}
	if len(s.docs) >= s.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema resolver: exceeded max documents (%d)", s.opts.MaxDocuments)
	}
	if s.loader == nil {
		return nil, fmt.Errorf("jsonschema resolver: no loader for %s", src.Location())
	}

	loaded, err := s.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if int64(len(loaded.Raw())) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", len(loaded.Raw()))
	}
	body, err := Decode(loaded.Raw())
	if err != nil {
		return nil, err
	}
	if err := checkDialect(body); err != nil {
		return nil, err
	}
	return s.register(src, body)
}

func (s *refSession) confineFile(dir, ref string) (string, error) {
	candidate := ref
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(dir, ref)
	}
	candidate = filepath.Clean(candidate)
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	rel, err := filepath.Rel(s.rootDir, candidate)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", ref)
	}
	return candidate, nil
}

func (s *refSession) confineFS(dir, ref string) (string, error) {
	candidate := strings.TrimPrefix(path.Clean(path.Join(dir, ref)), "/")
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	root := strings.TrimPrefix(path.Clean(s.rootDir), "/")
	if root == "." {
		root = ""
	}
	switch {
	case candidate == ".." || strings.HasPrefix(candidate, "../"):
		return "", fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", ref)
	case root == "", candidate == root, strings.HasPrefix(candidate, root+"/"):
		return candidate, nil
	default:
		return "", fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", ref)
	}
}

func (d *refDocument) fragment(fragment string) (any, error) {
	switch {
	case fragment == "":
		return cloneAny(d.body), nil
	case strings.HasPrefix(fragment, "/"):
		return lookupPointer(d.body, fragment)
	}
	pointer, ok := d.anchors[fragment]
	if !ok {
		return nil, fmt.Errorf("jsonschema resolver: anchor %q not found", fragment)
	}
	if pointer == "" {
		return cloneAny(d.body), nil
	}
	return lookupPointer(d.body, pointer)
}

func canonicalSource(src Source) (key, location, dir string, err error) {
	if src == nil {
		return "", "", "", errors.New("jsonschema resolver: source is nil")
	}
	location = src.Location()
	switch src.Kind() {
	case SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", "", err
		}
		return "file:" + abs, abs, filepath.Dir(abs), nil
	case SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, cleaned, path.Dir(cleaned), nil
	case SourceKindURL:
		return "url:" + location, location, path.Dir(location), nil
	default:
		return "", "", "", errors.New("jsonschema resolver: unsupported source kind")
	}
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// LookupPointer returns a copy of the value addressed by a JSON pointer such as
// "/components/schemas/Address". A leading "#" is accepted.
func LookupPointer(root any, pointer string) (any, error) {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return cloneAny(root), nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("jsonschema resolver: invalid json pointer %q", pointer)
	}
	return lookupPointer(root, pointer)
}

func lookupPointer(root any, pointer string) (any, error) {
	current := root
	for _, token := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		decoded, err := url.PathUnescape(token)
		if err != nil {
			return nil, fmt.Errorf("jsonschema resolver: invalid json pointer %q", pointer)
		}
		decoded = pointerUnescaper.Replace(decoded)
		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[decoded]
			if !ok {
				return nil, fmt.Errorf("jsonschema resolver: pointer %q not found", pointer)
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("jsonschema resolver: pointer %q out of range", pointer)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("jsonschema resolver: pointer %q invalid", pointer)
		}
	}
	return cloneAny(current), nil
}

func collectAnchors(node any, pointer string, anchors map[string]string) error {
	switch typed := node.(type) {
	case map[string]any:
		if name, ok := typed["$anchor"].(string); ok && strings.TrimSpace(name) != "" {
			name = strings.TrimSpace(name)
			if _, exists := anchors[name]; exists {
				return fmt.Errorf("jsonschema resolver: duplicate anchor %q", name)
			}
			anchors[name] = pointer
		}
		for key, value := range typed {
			if isVendorExtension(key) {
				continue
			}
			if err := collectAnchors(value, pointer+"/"+escapeJSONPointer(key), anchors); err != nil {
				return err
			}
		}
	case []any:
		for idx, value := range typed {
			if err := collectAnchors(value, pointer+"/"+strconv.Itoa(idx), anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

// overlayRefSiblings copies annotation keywords written next to $ref onto the
// target. Anything else beside a $ref is rejected.
func overlayRefSiblings(target any, node map[string]any) (any, error) {
	merged, isObject := target.(map[string]any)
	for key, value := range node {
		if key == "$ref" {
			continue
		}
		if !isObject {
			return nil, errors.New("jsonschema resolver: $ref target is not an object")
		}
		switch {
		case key == "title", key == "description", key == "default", isVendorExtension(key):
			merged[key] = value
		default:
			return nil, fmt.Errorf("jsonschema resolver: unsupported $ref sibling %q", key)
		}
	}
	return target, nil
}

func cloneAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = cloneAny(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = cloneAny(val)
		}
		return out
	default:
		return typed
	}
}
