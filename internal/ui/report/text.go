package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	EmptyLine    = "No unused classes found."
	UnusedPrefix = "  UNUSED "
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	unusedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
)

// TextLines renders the report as plain lines: one line when unused is
// empty, otherwise a header followed by one line per class.
func TextLines(unused []string) []string {
	if len(unused) == 0 {
		return []string{EmptyLine}
	}
	lines := make([]string, 0, len(unused)+1)
	lines = append(lines, fmt.Sprintf("Unused classes (%d):", len(unused)))
	for _, name := range unused {
		lines = append(lines, UnusedPrefix+name)
	}
	return lines
}

// WriteText writes the report lines to w. With styled set the header and
// the UNUSED marker are colored; the line layout is unchanged.
func WriteText(w io.Writer, unused []string, styled bool) error {
	if !styled {
		for _, line := range TextLines(unused) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}

	if len(unused) == 0 {
		_, err := fmt.Fprintln(w, successStyle.Render(EmptyLine))
		return err
	}
	if _, err := fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Unused classes (%d):", len(unused)))); err != nil {
		return err
	}
	for _, name := range unused {
		if _, err := fmt.Fprintf(w, "  %s %s\n", unusedStyle.Render("UNUSED"), name); err != nil {
			return err
		}
	}
	return nil
}
