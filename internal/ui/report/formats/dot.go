package formats

import (
	"fmt"
	"strings"

	"unusedclass/internal/core/ports"
)

type DOTGenerator struct {
	result ports.CheckResult
}

func NewDOTGenerator(result ports.CheckResult) *DOTGenerator {
	return &DOTGenerator{result: result}
}

// Generate renders the reference graph restricted to scanned classes.
// Unused classes are filled red, framework-entered classes blue.
func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph classes {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  overlap=false;\n\n")

	engine := d.result.Engine
	if engine == nil {
		buf.WriteString("}\n")
		return buf.String(), nil
	}

	classes := engine.Classes()
	ids := makeIDs(classes)
	unused := make(map[string]bool, len(d.result.Unused))
	for _, name := range d.result.Unused {
		unused[name] = true
	}

	for _, name := range classes {
		attrs := fmt.Sprintf("label=\"%s\"", escapeLabel(name))
		switch {
		case unused[name]:
			attrs += ", style=\"rounded,filled\", fillcolor=\"#FCA5A5\", color=\"#DC2626\""
		case engine.IsFrameworkEntered(name):
			attrs += ", style=\"rounded,filled\", fillcolor=\"#BFDBFE\", color=\"#2563EB\""
		}
		buf.WriteString(fmt.Sprintf("  %s [%s];\n", ids[name], attrs))
	}
	buf.WriteString("\n")

	for _, from := range classes {
		for _, to := range engine.References(from) {
			toID, ok := ids[to]
			if !ok {
				continue
			}
			buf.WriteString(fmt.Sprintf("  %s -> %s;\n", ids[from], toID))
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}
