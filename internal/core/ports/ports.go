package ports

import (
	"context"
	"time"

	"unusedclass/internal/core/config"
	"unusedclass/internal/core/errors"
	"unusedclass/internal/data/history"
	"unusedclass/internal/engine/graph"
)

// HistoryStore abstracts snapshot persistence for trend/report workflows.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) (history.Snapshot, error)
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
	Latest(projectKey string) (history.Snapshot, bool, error)
}

// CheckRequest defines a check over a set of class roots. Empty Roots means
// the configured class_roots.
type CheckRequest struct {
	Roots []string
}

// SkippedFile is a class file that contributed nothing to the check.
type SkippedFile struct {
	Path   string          `json:"path"`
	Code   errors.ErrorCode `json:"code"`
	Reason string          `json:"reason"`
}

// CheckResult summarizes a completed check.
type CheckResult struct {
	Roots      []string
	Files      int
	Unused     []string // sorted, with exclude.classes matches removed
	Hidden     int      // unused classes removed by exclude.classes
	Skipped    []SkippedFile
	Duplicates []graph.Duplicate
	Stats      graph.Stats
	Duration   time.Duration

	// Engine is finalized; outputs use its read-side helpers.
	Engine *graph.Engine
}

// HistoryRequest captures inputs needed to save a snapshot and compute trends.
type HistoryRequest struct {
	ProjectKey string
	Since      time.Time
	Window     time.Duration
}

// HistoryResult contains the saved snapshot, the change against the previous
// snapshot when there was one, and the trend report.
type HistoryResult struct {
	Snapshot history.Snapshot
	Change   *history.Change
	Report   *history.TrendReport
}

// CheckService defines the driving-port surface over the check use cases.
type CheckService interface {
	Check(ctx context.Context, req CheckRequest) (CheckResult, error)
	WriteOutputs(ctx context.Context, result CheckResult) ([]string, error)
	RecordHistory(ctx context.Context, store HistoryStore, result CheckResult, req HistoryRequest) (HistoryResult, error)
	UpdateConfig(ctx context.Context, cfg *config.Config) error
	WatchService() WatchService
}

// WatchService exposes watch lifecycle and updates for driving adapters.
type WatchService interface {
	Start(ctx context.Context) error
	Subscribe(ctx context.Context, handler func(CheckResult, error)) error
	Stop() error
}
