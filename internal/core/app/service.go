package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"unusedclass/internal/core/config"
	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
)

type checkService struct {
	app *App
}

var _ ports.CheckService = (*checkService)(nil)

func NewCheckService(app *App) ports.CheckService {
	return &checkService{app: app}
}

func (a *App) CheckService() ports.CheckService {
	return NewCheckService(a)
}

func (s *checkService) Check(ctx context.Context, req ports.CheckRequest) (ports.CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.CheckResult{}, err
	}
	if s.app == nil {
		return ports.CheckResult{}, fmt.Errorf("app is required")
	}
	result, err := s.app.Check(ctx, normalizeRoots(req.Roots))
	if err != nil {
		return ports.CheckResult{}, errors.AddContext(err, errors.CtxOperation, "check")
	}
	return result, nil
}

func (s *checkService) WriteOutputs(ctx context.Context, result ports.CheckResult) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.app == nil {
		return nil, fmt.Errorf("app is required")
	}
	return s.app.GenerateOutputs(ctx, result, nil)
}

func (s *checkService) RecordHistory(ctx context.Context, store ports.HistoryStore, result ports.CheckResult, req ports.HistoryRequest) (ports.HistoryResult, error) {
	if s.app == nil {
		return ports.HistoryResult{}, fmt.Errorf("app is required")
	}
	return s.app.RecordHistory(ctx, store, result, req)
}

func (s *checkService) UpdateConfig(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	if cfg == nil {
		return errors.New(errors.CodeInvalidInput, "config is required")
	}
	return s.app.UpdateConfig(cfg)
}

func (s *checkService) WatchService() ports.WatchService {
	return &watchService{app: s.app}
}

type watchService struct {
	app *App
}

var _ ports.WatchService = (*watchService)(nil)

func (s *watchService) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	return s.app.StartWatcher(ctx)
}

func (s *watchService) Subscribe(ctx context.Context, handler func(ports.CheckResult, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}
	s.app.SetUpdateHandler(func(result ports.CheckResult, err error) {
		if ctx.Err() != nil {
			return
		}
		handler(result, err)
	})
	return nil
}

func (s *watchService) Stop() error {
	if s.app == nil {
		return nil
	}
	return s.app.Close()
}

// normalizeRoots makes roots absolute and drops blanks and duplicates,
// keeping the given order.
func normalizeRoots(roots []string) []string {
	cleaned := make([]string, 0, len(roots))
	seen := make(map[string]bool)
	for _, p := range roots {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		abs := trimmed
		if absPath, err := filepath.Abs(trimmed); err == nil {
			abs = absPath
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		cleaned = append(cleaned, abs)
	}
	return cleaned
}
