package report

import (
	"fmt"
	"io"
	"strings"

	"unusedclass/internal/data/query"
	"unusedclass/internal/engine/graph"
)

// WriteQueryRows writes query results as a tab-separated table with a
// header line.
func WriteQueryRows(w io.Writer, rows []query.ClassRow) error {
	if _, err := fmt.Fprintln(w, "Class\tInbound\tOutbound\tFramework\tUnused\tSource"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Name, r.Inbound, r.Outbound, r.Framework, r.Unused, r.Source); err != nil {
			return err
		}
	}
	return nil
}

func WriteExplanation(w io.Writer, ex graph.Explanation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Class: %s\n", ex.Class)
	fmt.Fprintf(&b, "Source: %s\n", ex.Source)
	fmt.Fprintf(&b, "Framework entered: %s\n", yesNo(ex.FrameworkEntered))
	fmt.Fprintf(&b, "Unused: %s\n", yesNo(ex.Unused))
	writeList(&b, "References", ex.References)
	writeList(&b, "Referenced by", ex.DirectReferrers)
	writeList(&b, "Transitively referenced by", ex.TransitiveReferrers)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(b, "  %s\n", item)
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
