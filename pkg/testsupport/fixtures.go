package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgmodel "github.com/goliatone/go-formcond/pkg/model"
	"github.com/goliatone/go-formcond/pkg/schema"
)

// LoadDocument reads a fixture into a schema.Document with a file source.
func LoadDocument(t *testing.T, path string) schema.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

func LoadDocumentFromPath(path string) (schema.Document, error) {
	if path == "" {
		return schema.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	return schema.NewDocument(schema.SourceFromFile(path), data)
}

// MustLoadFormModel reads a JSON golden into a FormModel.
func MustLoadFormModel(t *testing.T, path string) pkgmodel.FormModel {
	t.Helper()

	var out pkgmodel.FormModel
	MustLoadJSON(t, path, &out)
	return out
}

// MustLoadJSON unmarshals a JSON fixture into out.
func MustLoadJSON(t *testing.T, path string, out any) {
	t.Helper()

	data := MustReadGolden(t, path)
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}

// WriteGolden stores value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, append(payload, '\n'))
}

// WriteMaybeGolden stores raw data when UPDATE_GOLDENS is set and reports
// whether it did, so the caller can skip the comparison.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a cmp diff, empty when equal.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	betweenTags    = regexp.MustCompile(`>\s+<`)
	insideTagClose = regexp.MustCompile(`\s+(/?>)`)
)

// NormalizeHTML collapses insignificant whitespace so HTML goldens survive
// template indentation changes.
func NormalizeHTML(markup string) string {
	out := whitespaceRun.ReplaceAllString(strings.TrimSpace(markup), " ")
	out = betweenTags.ReplaceAllString(out, "><")
	out = insideTagClose.ReplaceAllString(out, "$1")
	return out
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
