package app

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/engine/analyzer"
	"unusedclass/internal/engine/graph"
	"unusedclass/internal/shared/observability"
	"unusedclass/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type fileResult struct {
	facts analyzer.ClassFacts
	err   error
}

// Check scans roots (or the configured class roots when empty), analyzes
// every class file and computes the unused set. Files are decoded in
// parallel but ingested in enumeration order, so duplicate names resolve
// the same way on every run. A file that cannot be decoded is skipped with
// a warning; only a bad root or cancellation fails the check.
func (a *App) Check(ctx context.Context, roots []string) (result ports.CheckResult, err error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Check")
	defer span.End()
	start := time.Now()
	defer func() {
		if err != nil {
			observability.ChecksTotal.WithLabelValues("error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		observability.ChecksTotal.WithLabelValues("ok").Inc()
	}()

	a.mu.RLock()
	if len(roots) == 0 {
		roots = append([]string(nil), a.paths.ClassRoots...)
	}
	workers := a.Config.Scan.Workers
	limiter := a.limiter
	a.mu.RUnlock()

	if len(roots) == 0 {
		return ports.CheckResult{}, errors.New(errors.CodeInvalidInput, "no class roots given")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	span.SetAttributes(attribute.StringSlice("roots", roots), attribute.Int("workers", workers))

	scanStart := time.Now()
	files, err := a.ScanDirectories(ctx, roots)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.CheckResult{}, ctxErr
		}
		return ports.CheckResult{}, errors.AddContext(err, errors.CtxOperation, "scan_directories")
	}
	observability.AnalysisDuration.WithLabelValues("scan").Observe(time.Since(scanStart).Seconds())
	span.AddEvent("scanned", trace.WithAttributes(attribute.Int("files", len(files))))

	results, err := a.decodeAll(ctx, files, workers, limiter)
	if err != nil {
		return ports.CheckResult{}, err
	}

	engine := graph.NewEngine()
	result = ports.CheckResult{
		Roots:  roots,
		Files:  len(files),
		Engine: engine,
	}
	for i, r := range results {
		if r.err != nil {
			code := errors.CodeOf(r.err)
			observability.ClassesSkippedTotal.WithLabelValues(string(code)).Inc()
			slog.Warn("skipping class file", "path", files[i], "code", code, "error", r.err)
			result.Skipped = append(result.Skipped, ports.SkippedFile{
				Path:   files[i],
				Code:   code,
				Reason: r.err.Error(),
			})
			continue
		}
		dup, err := engine.Ingest(r.facts)
		if err != nil {
			return ports.CheckResult{}, err
		}
		if dup != nil {
			slog.Warn("duplicate class name", "class", dup.Name, "previous", dup.Previous, "current", dup.Current)
		}
	}

	reportStart := time.Now()
	unused := engine.Report()
	observability.AnalysisDuration.WithLabelValues("report").Observe(time.Since(reportStart).Seconds())

	result.Unused, result.Hidden = a.filterReport(unused)
	result.Duplicates = engine.Duplicates()
	result.Stats = engine.Stats()
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("classes", result.Stats.Classes),
		attribute.Int("unused", len(result.Unused)),
		attribute.Int("skipped", len(result.Skipped)),
	)
	slog.Debug("check complete",
		"files", result.Files,
		"classes", result.Stats.Classes,
		"unused", len(result.Unused),
		"hidden", result.Hidden,
		"skipped", len(result.Skipped),
		"duration", result.Duration,
		"heap_mb", util.GetHeapAllocMB(),
	)

	a.setLast(result)
	return result, nil
}

func (a *App) decodeAll(ctx context.Context, files []string, workers int, limiter *util.Limiter) ([]fileResult, error) {
	decodeStart := time.Now()
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := limiter.Wait(gctx, 1); err != nil {
				return err
			}
			facts, err := a.ProcessFile(path)
			results[i] = fileResult{facts: facts, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	observability.AnalysisDuration.WithLabelValues("decode").Observe(time.Since(decodeStart).Seconds())
	return results, nil
}

// filterReport removes exclude.classes matches from the sorted unused list
// and returns how many were removed.
func (a *App) filterReport(unused []string) ([]string, int) {
	a.mu.RLock()
	globs := a.excludeClasses
	a.mu.RUnlock()

	if len(globs) == 0 {
		return unused, 0
	}
	visible := make([]string, 0, len(unused))
	hidden := 0
	for _, name := range unused {
		if matchesAny(globs, name) {
			hidden++
			continue
		}
		visible = append(visible, name)
	}
	return visible, hidden
}
