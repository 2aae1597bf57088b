package app

import (
	"context"
	"log/slog"

	"unusedclass/internal/core/watcher"
)

// StartWatcher re-runs the check whenever class files below the roots
// change. Each run gets a fresh engine.
func (a *App) StartWatcher(ctx context.Context) error {
	a.mu.RLock()
	cfg := a.Config
	roots := append([]string(nil), a.paths.ClassRoots...)
	a.mu.RUnlock()

	w, err := watcher.NewWatcher(
		cfg.Watch.Debounce,
		cfg.Exclude.Dirs,
		cfg.Exclude.Files,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}
	if err := w.Watch(roots); err != nil {
		_ = w.Close()
		return err
	}
	a.mu.Lock()
	a.activeWatcher = w
	a.mu.Unlock()
	return nil
}

// HandleChanges runs a full check after a batch of class file changes and
// hands the outcome to the update handler.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("class files changed, re-checking", "count", len(paths))
	result, err := a.Check(ctx, nil)
	if err != nil {
		slog.Error("check failed", "error", err)
	}
	a.emitUpdate(result, err)
}
