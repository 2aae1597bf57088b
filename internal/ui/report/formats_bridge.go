package report

import (
	"time"

	"unusedclass/internal/core/ports"
	"unusedclass/internal/ui/report/formats"
)

type DOTGenerator = formats.DOTGenerator
type TSVGenerator = formats.TSVGenerator
type MarkdownGenerator = formats.MarkdownGenerator
type MarkdownReportData = formats.MarkdownReportData
type MarkdownReportOptions = formats.MarkdownReportOptions

func NewDOTGenerator(result ports.CheckResult) *DOTGenerator {
	return formats.NewDOTGenerator(result)
}

func NewTSVGenerator(result ports.CheckResult) *TSVGenerator {
	return formats.NewTSVGenerator(result)
}

func NewMarkdownGenerator() *MarkdownGenerator {
	return formats.NewMarkdownGenerator()
}

func GenerateJSON(result ports.CheckResult, generatedAt time.Time) ([]byte, error) {
	return formats.GenerateJSON(result, generatedAt)
}

func GenerateSARIF(result ports.CheckResult) ([]byte, error) {
	return formats.GenerateSARIF(result)
}
