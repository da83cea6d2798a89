package testsupport

import "testing"

func TestNormalizeHTML(t *testing.T) {
	in := "\n<form method=\"post\" >\n  <label>\n    Name\n  </label>\n  <input name=\"a\"\n    />\n</form>\n"
	want := `<form method="post"><label> Name </label><input name="a"/></form>`
	if got := NormalizeHTML(in); got != want {
		t.Fatalf("NormalizeHTML = %q, want %q", got, want)
	}
}
