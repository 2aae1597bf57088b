package graph

import (
	"fmt"
	"testing"

	"unusedclass/internal/engine/analyzer"
)

func BenchmarkEngine_Ingest(b *testing.B) {
	const classes = 20000
	all := make([]analyzer.ClassFacts, classes)
	for i := range all {
		all[i] = facts(fmt.Sprintf("p/C%05d", i), false,
			fmt.Sprintf("p/C%05d", (i+1)%classes),
			fmt.Sprintf("p/C%05d", (i+7)%classes),
		)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := NewEngine()
		for _, f := range all {
			if _, err := e.Ingest(f); err != nil {
				b.Fatal(err)
			}
		}
		_ = e.Report()
	}
}
