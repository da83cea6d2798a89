package schema

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source describes the origin of a schema document. Loaders switch on Kind to
// pick a strategy and use Location as the lookup key.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind identifies a loading strategy.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }
func (s source) Location() string { return s.location }

func (s source) String() string {
	return string(s.kind) + ":" + s.location
}

// SourceFromFile points at a document on the local disk.
func SourceFromFile(p string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(p)}
}

// SourceFromFS points at a document inside an fs.FS. Leading slashes are
// dropped because fs.FS paths are always relative.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: path.Clean(strings.TrimPrefix(name, "/"))}
}

// SourceFromURL points at an HTTP(S) document. It panics on malformed input;
// use ParseSource for user supplied values.
func SourceFromURL(raw string) Source {
	src, err := sourceFromURL(raw)
	if err != nil {
		panic(err.Error())
	}
	return src
}

// ParseSource maps a CLI style argument onto a Source: http(s) URLs become URL
// sources, everything else is treated as a file path.
func ParseSource(raw string) (Source, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, fmt.Errorf("schema: empty source")
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return sourceFromURL(value)
	}
	return SourceFromFile(value), nil
}

func sourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	return source{kind: SourceKindURL, location: raw}, nil
}
