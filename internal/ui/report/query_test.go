package report

import (
	"bytes"
	"testing"

	"unusedclass/internal/data/query"
	"unusedclass/internal/engine/graph"
)

func TestWriteQueryRows(t *testing.T) {
	var buf bytes.Buffer
	err := WriteQueryRows(&buf, []query.ClassRow{
		{Name: "com/x/A", Inbound: 0, Outbound: 2, Unused: 1, Source: "/c/com/x/A.class"},
	})
	if err != nil {
		t.Fatalf("WriteQueryRows: %v", err)
	}
	want := "Class\tInbound\tOutbound\tFramework\tUnused\tSource\n" +
		"com/x/A\t0\t2\t0\t1\t/c/com/x/A.class\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteExplanation(t *testing.T) {
	var buf bytes.Buffer
	err := WriteExplanation(&buf, graph.Explanation{
		Class:               "com/x/Repo",
		Source:              "/c/com/x/Repo.class",
		References:          []string{"java/lang/Object"},
		DirectReferrers:     []string{"com/x/Svc"},
		TransitiveReferrers: nil,
	})
	if err != nil {
		t.Fatalf("WriteExplanation: %v", err)
	}
	want := "Class: com/x/Repo\n" +
		"Source: /c/com/x/Repo.class\n" +
		"Framework entered: no\n" +
		"Unused: no\n" +
		"References (1):\n  java/lang/Object\n" +
		"Referenced by (1):\n  com/x/Svc\n" +
		"Transitively referenced by (0):\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}
