package app

import (
	"context"
	"fmt"
	"os"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}
	if err := ctx.Err(); err != nil {
		status.Status = "down"
		status.Components["context"] = err.Error()
		return status
	}

	// Class roots
	for _, root := range s.app.Paths().ClassRoots {
		info, err := os.Stat(root)
		switch {
		case err != nil:
			status.Status = "degraded"
			status.Components["root:"+root] = "missing"
		case !info.IsDir():
			status.Status = "degraded"
			status.Components["root:"+root] = "not a directory"
		default:
			status.Components["root:"+root] = "ok"
		}
	}

	// Last check
	if last, ok := s.app.LastResult(); ok {
		status.Components["last_check"] = fmt.Sprintf("ok (%d classes, %d unused, %d skipped)",
			last.Stats.Classes, len(last.Unused), len(last.Skipped))
	} else {
		status.Components["last_check"] = "pending"
	}

	// Watcher
	if s.app.currentWatcher() != nil {
		status.Components["watcher"] = "ok"
	}

	return status
}
