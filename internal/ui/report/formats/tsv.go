package formats

import (
	"fmt"
	"strings"

	"unusedclass/internal/core/ports"
)

type TSVGenerator struct {
	result ports.CheckResult
}

func NewTSVGenerator(result ports.CheckResult) *TSVGenerator {
	return &TSVGenerator{result: result}
}

// Generate lists unused classes, then framework-entered classes, then
// skipped files. Rows within each block are sorted.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Type\tClass\tSource\n")
	for _, name := range t.result.Unused {
		buf.WriteString(fmt.Sprintf("unused\t%s\t%s\n", name, sourceOf(t.result, name)))
	}
	if t.result.Engine != nil {
		for _, name := range t.result.Engine.FrameworkEntered() {
			buf.WriteString(fmt.Sprintf("framework\t%s\t%s\n", name, sourceOf(t.result, name)))
		}
	}
	for _, skipped := range t.result.Skipped {
		buf.WriteString(fmt.Sprintf("skipped\t\t%s\n", skipped.Path))
	}

	return buf.String(), nil
}
