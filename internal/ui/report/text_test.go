package report

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, nil, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No unused classes found.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestWriteText_Lines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, []string{"com/x/A", "com/x/C"}, false); err != nil {
		t.Fatal(err)
	}
	want := "Unused classes (2):\n  UNUSED com/x/A\n  UNUSED com/x/C\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteText_StyledKeepsLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, []string{"com/x/A"}, true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "Unused classes (1):") {
		t.Errorf("header missing: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  ") || !strings.HasSuffix(lines[1], " com/x/A") || !strings.Contains(lines[1], "UNUSED") {
		t.Errorf("unexpected class line %q", lines[1])
	}
}

func TestTextLines(t *testing.T) {
	if got := TextLines([]string{}); len(got) != 1 || got[0] != EmptyLine {
		t.Fatalf("unexpected empty lines %v", got)
	}
	got := TextLines([]string{"a/B"})
	if len(got) != 2 || got[1] != UnusedPrefix+"a/B" {
		t.Fatalf("unexpected lines %v", got)
	}
}
