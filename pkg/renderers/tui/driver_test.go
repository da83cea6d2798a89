package tui

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStringValidator(t *testing.T) {
	errShort := errors.New("too short")
	var seen []string
	validate := stringValidator(func(s string) error {
		seen = append(seen, s)
		if len(s) < 3 {
			return errShort
		}
		return nil
	})

	if err := validate("abcd"); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := validate("ab"); !errors.Is(err, errShort) {
		t.Fatalf("expected errShort, got %v", err)
	}
	if err := validate(42); !errors.Is(err, errShort) {
		t.Fatalf("non-string answer should be checked as empty, got %v", err)
	}
	if diff := cmp.Diff([]string{"abcd", "ab", ""}, seen); diff != "" {
		t.Fatalf("validator inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestInputOptionsAndHelp(t *testing.T) {
	if opts := inputOptions(InputConfig{}); len(opts) != 0 {
		t.Fatalf("expected no options without a validator, got %d", len(opts))
	}
	withCheck := InputConfig{Validator: func(string) error { return nil }}
	if opts := inputOptions(withCheck); len(opts) != 1 {
		t.Fatalf("expected one option, got %d", len(opts))
	}

	if got := inputHelp(InputConfig{Placeholder: "90210"}); got != "e.g. 90210" {
		t.Fatalf("placeholder help = %q", got)
	}
	if got := inputHelp(InputConfig{Help: "Five digits", Placeholder: "90210"}); got != "Five digits" {
		t.Fatalf("explicit help = %q", got)
	}
}

func TestOptionIndexHelpers(t *testing.T) {
	options := []string{"red", "green", "blue"}
	if got := indexOf(options, "blue"); got != 2 {
		t.Fatalf("indexOf = %d", got)
	}
	if got := indexOf(options, "pink"); got != -1 {
		t.Fatalf("indexOf missing = %d", got)
	}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"blue", "red"})); diff != "" {
		t.Fatalf("indicesOf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"green"}, optionsAt(options, []int{1, 7, -1})); diff != "" {
		t.Fatalf("optionsAt mismatch (-want +got):\n%s", diff)
	}
}
