package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcond/pkg/render"
)

func TestSubmissionMethod(t *testing.T) {
	cases := []struct {
		method   string
		form     string
		override string
	}{
		{"", "post", ""},
		{"post", "post", ""},
		{"GET", "get", ""},
		{" patch ", "post", "PATCH"},
		{"DELETE", "post", "DELETE"},
	}
	for _, tc := range cases {
		form, override := render.SubmissionMethod(tc.method)
		if form != tc.form || override != tc.override {
			t.Errorf("SubmissionMethod(%q) = %q, %q; want %q, %q", tc.method, form, override, tc.form, tc.override)
		}
	}
}

func TestSortedHiddenFields(t *testing.T) {
	got := render.SortedHiddenFields(map[string]string{
		"version": "3",
		" ":       "dropped",
		"_csrf":   "token",
	})
	want := []render.HiddenField{
		{Name: "_csrf", Value: "token"},
		{Name: "version", Value: "3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}

	if got := render.Hidden(" id ", 42); got != (render.HiddenField{Name: "id", Value: "42"}) {
		t.Fatalf("unexpected hidden field %+v", got)
	}
}
