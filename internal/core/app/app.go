package app

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"unusedclass/internal/core/config"
	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/core/watcher"
	"unusedclass/internal/engine/analyzer"
	"unusedclass/internal/shared/util"

	"github.com/gobwas/glob"
)

// App owns the configuration-derived state of a check: resolved paths,
// compiled filters and the framework marker set. Each Check builds a fresh
// engine, so an App can be reused across watch-mode re-runs.
type App struct {
	Config *config.Config

	mu             sync.RWMutex
	paths          config.ResolvedPaths
	analyzer       *analyzer.Analyzer
	markers        analyzer.MarkerSet
	excludeDirs    []glob.Glob
	excludeFiles   []glob.Glob
	excludeClasses []glob.Glob
	limiter        *util.Limiter

	updateMu sync.RWMutex
	onUpdate func(ports.CheckResult, error)

	lastMu sync.RWMutex
	last   *ports.CheckResult

	activeWatcher *watcher.Watcher
}

// New builds an App. Relative paths in cfg resolve against baseDir, normally
// the directory holding the config file.
func New(cfg *config.Config, baseDir string) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeInvalidInput, "config is required")
	}
	if strings.TrimSpace(baseDir) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		baseDir = cwd
	}

	a := &App{}
	if err := a.apply(cfg, baseDir); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) apply(cfg *config.Config, baseDir string) error {
	paths, err := config.ResolvePaths(cfg, baseDir)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "resolve configured paths")
	}
	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return err
	}
	excludeClasses, err := compileGlobs(cfg.Exclude.Classes, "exclude class", '/')
	if err != nil {
		return err
	}

	var markers analyzer.MarkerSet
	if cfg.Framework.DefaultsEnabled() {
		markers = analyzer.DefaultMarkerSet(cfg.Framework.Markers...)
	} else {
		markers = analyzer.NewMarkerSet(cfg.Framework.Markers...)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Config = cfg
	a.paths = paths
	a.markers = markers
	a.analyzer = analyzer.New(markers)
	a.excludeDirs = excludeDirs
	a.excludeFiles = excludeFiles
	a.excludeClasses = excludeClasses
	a.limiter = util.NewPerSecond(cfg.Scan.MaxFilesPerSecond)
	return nil
}

// UpdateConfig swaps in a reloaded configuration. The next check uses it.
func (a *App) UpdateConfig(cfg *config.Config) error {
	a.mu.RLock()
	base := a.paths.BaseDir
	a.mu.RUnlock()

	previous := a.Paths().ClassRoots
	if err := a.apply(cfg, base); err != nil {
		return err
	}
	if w := a.currentWatcher(); w != nil {
		w.SetDebounce(cfg.Watch.Debounce)
		if !slices.Equal(previous, a.Paths().ClassRoots) {
			slog.Warn("class_roots changed; the watcher keeps the roots it started with until restart")
		}
	}
	return nil
}

// Paths returns the resolved configuration paths.
func (a *App) Paths() config.ResolvedPaths {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paths
}

// Markers returns the framework marker set in effect.
func (a *App) Markers() analyzer.MarkerSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.markers
}

// LastResult returns the most recent successful check.
func (a *App) LastResult() (ports.CheckResult, bool) {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	if a.last == nil {
		return ports.CheckResult{}, false
	}
	return *a.last, true
}

func (a *App) setLast(result ports.CheckResult) {
	a.lastMu.Lock()
	a.last = &result
	a.lastMu.Unlock()
}

func (a *App) SetUpdateHandler(handler func(ports.CheckResult, error)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(result ports.CheckResult, err error) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(result, err)
	}
}

func (a *App) currentWatcher() *watcher.Watcher {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activeWatcher
}

// Close stops the watcher if one is running.
func (a *App) Close() error {
	a.mu.Lock()
	w := a.activeWatcher
	a.activeWatcher = nil
	a.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

func compileGlobs(patterns []string, label string, separators ...rune) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, separators...)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid %s pattern %q", label, pattern))
		}
		out = append(out, g)
	}
	return out, nil
}

func matchesAny(globs []glob.Glob, value string) bool {
	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}
	return false
}
