package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/data/history"
	"unusedclass/internal/shared/observability"
)

// RecordHistory saves a snapshot of result, compares it with the previous
// snapshot of the project and builds the trend report over req.Since.
func (a *App) RecordHistory(ctx context.Context, store ports.HistoryStore, result ports.CheckResult, req ports.HistoryRequest) (ports.HistoryResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.HistoryResult{}, err
	}
	if store == nil {
		return ports.HistoryResult{}, errors.New(errors.CodeInvalidInput, "history store is required")
	}
	_, span := observability.Tracer.Start(ctx, "app.RecordHistory")
	defer span.End()

	projectKey := strings.TrimSpace(req.ProjectKey)
	if projectKey == "" {
		projectKey = "default"
	}
	window := req.Window
	if window <= 0 {
		window = 24 * time.Hour
	}

	previous, hasPrevious, err := store.Latest(projectKey)
	if err != nil {
		return ports.HistoryResult{}, fmt.Errorf("load previous snapshot: %w", err)
	}

	snapshot := history.Snapshot{
		Timestamp:      time.Now().UTC(),
		ClassCount:     result.Stats.Classes,
		UnusedCount:    len(result.Unused),
		FrameworkCount: result.Stats.Framework,
		SkippedCount:   len(result.Skipped),
		DuplicateCount: len(result.Duplicates),
		Unused:         append([]string(nil), result.Unused...),
	}
	saved, err := store.SaveSnapshot(projectKey, snapshot)
	if err != nil {
		return ports.HistoryResult{}, fmt.Errorf("save history snapshot: %w", err)
	}
	observability.HistorySnapshotsTotal.Inc()

	out := ports.HistoryResult{Snapshot: saved}
	if hasPrevious {
		change := history.Compare(previous, saved)
		out.Change = &change
	}

	snapshots, err := store.LoadSnapshots(projectKey, req.Since)
	if err != nil {
		return ports.HistoryResult{}, fmt.Errorf("load history snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return out, nil
	}
	trend, err := history.BuildTrendReport(projectKey, snapshots, window)
	if err != nil {
		return ports.HistoryResult{}, fmt.Errorf("build trend report: %w", err)
	}
	out.Report = &trend
	return out, nil
}
