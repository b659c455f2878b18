package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Jane Doe", expected: "jane-doe"},
		{name: "special characters", input: "Hello, World!", expected: "hello-world"},
		{name: "numbers", input: "IC 0042", expected: "ic-0042"},
		{name: "accents", input: "Café résumé", expected: "cafe-resume"},
		{name: "non-decomposable letters", input: "Zoë Ørsted", expected: "zoe-orsted"},
		{name: "german sharp s", input: "Strauß", expected: "strauss"},
		{name: "multiple spaces", input: "Hello   World", expected: "hello-world"},
		{name: "leading and trailing", input: "  -Hello-  ", expected: "hello"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!!!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPassFilename(t *testing.T) {
	tests := []struct {
		pass, name string
		want       string
	}{
		{"IC-0042", "Jane Doe", "legacy-pass-ic-0042-jane-doe.pdf"},
		{"", "Renée Fleming", "legacy-pass-renee-fleming.pdf"},
		{"", "", "legacy-pass.pdf"},
	}

	for _, tt := range tests {
		if got := PassFilename(tt.pass, tt.name); got != tt.want {
			t.Errorf("PassFilename(%q, %q) = %q, want %q", tt.pass, tt.name, got, tt.want)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"legacy_pass_IC0042.pdf", "legacypassic0042.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\pass.PDF`, "pass.pdf"},
		{"Zoë's pass.pdf", "zoes-pass.pdf"},
		{"..", "fallback.pdf"},
		{"", "fallback.pdf"},
		{"***.pdf", "fallback.pdf"},
	}

	for _, tt := range tests {
		if got := SafeFilename(tt.input, "fallback.pdf"); got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
