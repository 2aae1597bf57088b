package formats

import (
	"fmt"
	"strings"
	"time"

	"unusedclass/internal/core/ports"
	"unusedclass/internal/data/history"
)

type MarkdownReportData struct {
	Result ports.CheckResult
	// Change is the comparison with the previous history snapshot, if any.
	Change *history.Change
}

type MarkdownReportOptions struct {
	ProjectName         string
	Version             string
	GeneratedAt         time.Time
	TableOfContents     bool
	CollapsibleSections bool
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data MarkdownReportData, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	result := data.Result

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Unused Class Report\n")
	b.WriteString("project: " + nonEmpty(opts.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Unused Class Report\n\n")
	if opts.TableOfContents {
		b.WriteString("## Table of Contents\n")
		b.WriteString("- [Executive Summary](#executive-summary)\n")
		if data.Change != nil {
			b.WriteString("- [Trend](#trend)\n")
		}
		b.WriteString("- [Unused Classes](#unused-classes)\n")
		if len(result.Skipped) > 0 {
			b.WriteString("- [Skipped Files](#skipped-files)\n")
		}
		if len(result.Duplicates) > 0 {
			b.WriteString("- [Duplicate Classes](#duplicate-classes)\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Executive Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Class Files | %d |\n", result.Files))
	b.WriteString(fmt.Sprintf("| Classes | %d |\n", result.Stats.Classes))
	b.WriteString(fmt.Sprintf("| References | %d |\n", result.Stats.Edges))
	b.WriteString(fmt.Sprintf("| Framework Entered | %d |\n", result.Stats.Framework))
	b.WriteString(fmt.Sprintf("| Unused Classes | %d |\n", len(result.Unused)))
	b.WriteString(fmt.Sprintf("| Hidden By Filter | %d |\n", result.Hidden))
	b.WriteString(fmt.Sprintf("| Skipped Files | %d |\n", len(result.Skipped)))
	b.WriteString(fmt.Sprintf("| Duplicate Names | %d |\n\n", len(result.Duplicates)))

	if data.Change != nil {
		m.writeChange(&b, *data.Change, opts.CollapsibleSections)
	}
	m.writeUnused(&b, result, opts.CollapsibleSections)
	m.writeSkipped(&b, result.Skipped, opts.CollapsibleSections)
	m.writeDuplicates(&b, result, opts.CollapsibleSections)

	return b.String(), nil
}

func (m *MarkdownGenerator) writeChange(b *strings.Builder, change history.Change, collapsible bool) {
	b.WriteString("## Trend\n")
	b.WriteString(change.Summary() + "\n\n")
	rows := make([]string, 0, len(change.NewlyUnused)+len(change.NoLongerUnused))
	for _, name := range change.NewlyUnused {
		rows = append(rows, fmt.Sprintf("| `%s` | newly unused |\n", name))
	}
	for _, name := range change.NoLongerUnused {
		rows = append(rows, fmt.Sprintf("| `%s` | no longer unused |\n", name))
	}
	if len(rows) == 0 {
		return
	}
	m.writeTableWithCollapse(
		b,
		"Change details",
		collapsible,
		len(rows) > 10,
		[]string{"| Class | Change |\n", "| --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeUnused(b *strings.Builder, result ports.CheckResult, collapsible bool) {
	b.WriteString("## Unused Classes\n")
	if len(result.Unused) == 0 {
		b.WriteString("No unused classes found.\n\n")
		return
	}
	rows := make([]string, 0, len(result.Unused))
	for _, name := range result.Unused {
		rows = append(rows, fmt.Sprintf("| `%s` | `%s` |\n", name, sourceOf(result, name)))
	}
	m.writeTableWithCollapse(
		b,
		"Unused class details",
		collapsible,
		len(rows) > 10,
		[]string{"| Class | Source |\n", "| --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeSkipped(b *strings.Builder, skipped []ports.SkippedFile, collapsible bool) {
	if len(skipped) == 0 {
		return
	}
	b.WriteString("## Skipped Files\n")
	rows := make([]string, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, fmt.Sprintf("| `%s` | %s |\n", s.Path, s.Code))
	}
	m.writeTableWithCollapse(
		b,
		"Skipped file details",
		collapsible,
		len(rows) > 10,
		[]string{"| File | Code |\n", "| --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeDuplicates(b *strings.Builder, result ports.CheckResult, collapsible bool) {
	if len(result.Duplicates) == 0 {
		return
	}
	b.WriteString("## Duplicate Classes\n")
	rows := make([]string, 0, len(result.Duplicates))
	for _, dup := range result.Duplicates {
		rows = append(rows, fmt.Sprintf("| `%s` | `%s` | `%s` |\n", dup.Name, dup.Previous, dup.Current))
	}
	m.writeTableWithCollapse(
		b,
		"Duplicate details",
		collapsible,
		len(rows) > 10,
		[]string{"| Class | Replaced | Kept |\n", "| --- | --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeTableWithCollapse(
	b *strings.Builder,
	summary string,
	collapsible bool,
	collapse bool,
	header []string,
	rows []string,
) {
	if collapsible && collapse {
		b.WriteString("<details>\n")
		b.WriteString("<summary>")
		b.WriteString(summary)
		b.WriteString("</summary>\n\n")
	}
	for _, line := range header {
		b.WriteString(line)
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	b.WriteString("\n")
	if collapsible && collapse {
		b.WriteString("</details>\n\n")
	}
}
