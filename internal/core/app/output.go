package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"unusedclass/internal/core/ports"
	"unusedclass/internal/data/history"
	"unusedclass/internal/shared/observability"
	"unusedclass/internal/shared/util"
	"unusedclass/internal/shared/version"
	"unusedclass/internal/ui/report"
)

// GenerateOutputs writes every configured report file and returns the
// written paths in a fixed order (tsv, json, sarif, dot, markdown).
func (a *App) GenerateOutputs(ctx context.Context, result ports.CheckResult, change *history.Change) ([]string, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.GenerateOutputs")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("outputs").Observe(time.Since(start).Seconds())
	}()

	targets := a.Paths().Output
	written := make([]string, 0, 5)
	write := func(path, kind string, render func() ([]byte, error)) error {
		if path == "" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := render()
		if err != nil {
			return fmt.Errorf("generate %s output: %w", kind, err)
		}
		if err := util.WriteFileWithDirs(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s output %q: %w", kind, path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(targets.TSV, "TSV", func() ([]byte, error) {
		out, err := report.NewTSVGenerator(result).Generate()
		return []byte(out), err
	}); err != nil {
		return written, err
	}
	if err := write(targets.JSON, "JSON", func() ([]byte, error) {
		return report.GenerateJSON(result, time.Now().UTC())
	}); err != nil {
		return written, err
	}
	if err := write(targets.SARIF, "SARIF", func() ([]byte, error) {
		return report.GenerateSARIF(result)
	}); err != nil {
		return written, err
	}
	if err := write(targets.DOT, "DOT", func() ([]byte, error) {
		out, err := report.NewDOTGenerator(result).Generate()
		return []byte(out), err
	}); err != nil {
		return written, err
	}
	if err := write(targets.Markdown, "Markdown", func() ([]byte, error) {
		out, err := report.NewMarkdownGenerator().Generate(report.MarkdownReportData{
			Result: result,
			Change: change,
		}, report.MarkdownReportOptions{
			ProjectName:         filepath.Base(a.Paths().BaseDir),
			Version:             version.Version,
			GeneratedAt:         time.Now().UTC(),
			TableOfContents:     true,
			CollapsibleSections: true,
		})
		return []byte(out), err
	}); err != nil {
		return written, err
	}
	return written, nil
}
