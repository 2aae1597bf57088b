package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/engine/analyzer"
	"unusedclass/internal/shared/observability"

	"github.com/gobwas/glob"
)

const classExt = ".class"

// ScanDirectories returns every class file below roots in lexical order.
// Every root must be an existing directory. Symlinked directories are
// followed when configured; each canonical directory is visited once, so
// symlink loops terminate.
func (a *App) ScanDirectories(ctx context.Context, roots []string) ([]string, error) {
	a.mu.RLock()
	w := walker{
		excludeDirs:    a.excludeDirs,
		excludeFiles:   a.excludeFiles,
		maxDepth:       a.Config.Scan.MaxDepth,
		followSymlinks: a.Config.Scan.SymlinksFollowed(),
		visited:        make(map[string]bool),
	}
	a.mu.RUnlock()

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.AddContext(errors.New(errors.CodeInvalidInput, "class root does not exist"), errors.CtxPath, root)
			}
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInvalidInput, "stat class root"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			return nil, errors.AddContext(errors.New(errors.CodeInvalidInput, "class root is not a directory"), errors.CtxPath, root)
		}
	}

	for _, root := range roots {
		if err := w.walk(ctx, root, 0); err != nil {
			return nil, err
		}
	}
	return w.files, nil
}

type walker struct {
	excludeDirs    []glob.Glob
	excludeFiles   []glob.Glob
	maxDepth       int
	followSymlinks bool
	visited        map[string]bool
	files          []string
}

func (w *walker) walk(ctx context.Context, dir string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.maxDepth > 0 && depth > w.maxDepth {
		slog.Debug("max scan depth reached", "path", dir, "depth", depth)
		return nil
	}

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		slog.Warn("cannot resolve directory", "path", dir, "error", err)
		return nil
	}
	if w.visited[canonical] {
		slog.Debug("directory already visited", "path", dir, "canonical", canonical)
		return nil
	}
	w.visited[canonical] = true

	// os.ReadDir sorts by name, which gives the lexical enumeration order.
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("cannot read directory", "path", dir, "error", err)
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()
		isRegular := entry.Type().IsRegular()

		if entry.Type()&os.ModeSymlink != 0 {
			if !w.followSymlinks {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				slog.Debug("dangling symlink", "path", path, "error", err)
				continue
			}
			isDir = info.IsDir()
			isRegular = info.Mode().IsRegular()
		}

		if isDir {
			if matchesAny(w.excludeDirs, entry.Name()) {
				continue
			}
			if err := w.walk(ctx, path, depth+1); err != nil {
				return err
			}
			continue
		}
		if !isRegular || !strings.HasSuffix(entry.Name(), classExt) {
			continue
		}
		if matchesAny(w.excludeFiles, entry.Name()) {
			continue
		}
		w.files = append(w.files, path)
	}
	return nil
}

// ProcessFile decodes and analyzes one class file.
func (a *App) ProcessFile(path string) (analyzer.ClassFacts, error) {
	a.mu.RLock()
	an := a.analyzer
	a.mu.RUnlock()

	slog.Debug("analyzing class file", "path", path)
	start := time.Now()
	facts, err := an.AnalyzeFile(path)
	observability.DecodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return analyzer.ClassFacts{}, err
	}
	observability.ClassesDecodedTotal.Inc()
	return facts, nil
}
