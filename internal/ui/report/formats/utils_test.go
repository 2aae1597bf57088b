package formats

import (
	"path/filepath"
	"testing"
)

func TestSanitizeID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: "c"},
		{name: "InternalName", input: "com/x/A", expected: "com_x_A"},
		{name: "Inner", input: "com/x/A$1", expected: "com_x_A_1"},
		{name: "LeadingDigit", input: "9lives/Cat", expected: "c_9lives_Cat"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeID(tc.input); got != tc.expected {
				t.Fatalf("sanitizeID(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestMakeIDs_DisambiguatesCollisions(t *testing.T) {
	t.Parallel()

	ids := makeIDs([]string{"a/b", "a_b", "a$b"})
	if ids["a/b"] != "a_b" || ids["a_b"] != "a_b_2" || ids["a$b"] != "a_b_3" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestRootFor(t *testing.T) {
	t.Parallel()

	base := filepath.Join(string(filepath.Separator), "work")
	roots := []string{base, filepath.Join(base, "target", "classes")}
	path := filepath.Join(base, "target", "classes", "com", "x", "A.class")

	if got := rootFor(roots, path); got != roots[1] {
		t.Fatalf("expected longest root, got %q", got)
	}
	if got := rootFor(roots, filepath.Join(string(filepath.Separator), "elsewhere", "A.class")); got != "" {
		t.Fatalf("expected no root, got %q", got)
	}
}
