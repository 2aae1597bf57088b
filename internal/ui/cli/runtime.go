package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	coreapp "unusedclass/internal/core/app"
	"unusedclass/internal/core/config"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/data/history"
	"unusedclass/internal/data/query"
	"unusedclass/internal/shared/observability"
	"unusedclass/internal/shared/util"
	"unusedclass/internal/shared/version"
	"unusedclass/internal/ui/report"

	"github.com/mattn/go-isatty"
)

const (
	exitOK         = 0
	exitError      = 1
	exitUsage      = 2
	exitUnusedSeen = 3
)

func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	styled := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return run(ctx, args, os.Stdout, os.Stderr, styled)
}

// run is Run with its streams injected. terminal reports whether stdout is
// an interactive terminal.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, terminal bool) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "unusedclass v%s\n", version.Version)
		return exitOK
	}

	configureLogging(stderr, opts.verbose)

	if err := validateOptions(opts); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}

	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitError
	}
	baseDir := filepath.Dir(cfgPath)
	if cfgPath == "" {
		if baseDir, err = os.Getwd(); err != nil {
			slog.Error("failed to detect working directory", "error", err)
			return exitError
		}
	}
	if opts.history {
		cfg.DB.Enabled = true
	}
	roots, err := absRoots(opts.roots)
	if err != nil {
		slog.Error("failed to resolve class roots", "error", err)
		return exitError
	}
	if len(roots) > 0 {
		cfg.ClassRoots = roots
	}
	if opts.metricsAddr != "" {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, version.Version)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return exitError
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	application, err := coreapp.New(cfg, baseDir)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitError
	}
	defer application.Close()

	store, err := openHistoryStoreIfEnabled(cfg, application.Paths())
	if err != nil {
		slog.Error("history setup failed", "error", err)
		return exitError
	}
	var historyStore ports.HistoryStore
	if store != nil {
		defer store.Close()
		historyStore = store
	}

	since, err := parseSince(opts.since)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}
	window, err := parseHistoryWindow(opts.historyWindow)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}

	r := &reporter{
		app:     application,
		store:   historyStore,
		opts:    opts,
		out:     stdout,
		styled:  terminal && opts.color,
		history: ports.HistoryRequest{ProjectKey: cfg.DB.Project, Since: since, Window: window},
	}

	svc := application.CheckService()
	result, err := svc.Check(ctx, ports.CheckRequest{})
	if err != nil {
		slog.Error("check failed", "error", err)
		return exitError
	}
	if err := r.emit(ctx, result); err != nil {
		slog.Error("failed to report results", "error", err)
		return exitError
	}

	if code, done := runQueryCommand(ctx, result, opts, stdout, stderr); done {
		return code
	}

	if !opts.watch {
		if opts.failOnUnused && len(result.Unused) > 0 {
			return exitUnusedSeen
		}
		return exitOK
	}

	if err := runWatch(ctx, application, svc, r, cfg, cfgPath, roots); err != nil {
		slog.Error("watch mode failed", "error", err)
		return exitError
	}
	return exitOK
}

// runQueryCommand prints the --query or --explain answer after the report.
// done is false when neither was requested.
func runQueryCommand(ctx context.Context, result ports.CheckResult, opts cliOptions, stdout, stderr io.Writer) (code int, done bool) {
	switch {
	case opts.query != "":
		rows, err := query.NewService(result).ExecuteCQL(ctx, opts.query, opts.queryLimit)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitError, true
		}
		fmt.Fprintln(stdout)
		if err := report.WriteQueryRows(stdout, rows); err != nil {
			slog.Error("failed to print query rows", "error", err)
			return exitError, true
		}
	case opts.explain != "":
		name := strings.ReplaceAll(strings.TrimSpace(opts.explain), ".", "/")
		ex, err := result.Engine.Explain(name)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitError, true
		}
		fmt.Fprintln(stdout)
		if err := report.WriteExplanation(stdout, ex); err != nil {
			slog.Error("failed to print explanation", "error", err)
			return exitError, true
		}
	default:
		return exitOK, false
	}
	if opts.failOnUnused && len(result.Unused) > 0 {
		return exitUnusedSeen, true
	}
	return exitOK, true
}

// absRoots resolves command-line roots against the working directory, not
// the config file directory.
func absRoots(roots []string) ([]string, error) {
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %q: %w", root, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

func validateOptions(opts cliOptions) error {
	if opts.watch && (opts.query != "" || opts.explain != "") {
		return fmt.Errorf("--query and --explain cannot be combined with --watch")
	}
	if opts.query != "" && opts.explain != "" {
		return fmt.Errorf("--query and --explain cannot be combined")
	}
	if opts.queryLimit < 0 {
		return fmt.Errorf("--query-limit must be >= 0")
	}
	if !opts.history && (opts.historyTSV != "" || opts.historyJSON != "" || opts.since != "") {
		return fmt.Errorf("--since, --history-tsv and --history-json require --history")
	}
	return nil
}

// loadConfig returns the configuration and the path it was read from, or
// an empty path when the defaults are in use.
func loadConfig(opts cliOptions) (*config.Config, string, error) {
	path := strings.TrimSpace(opts.configPath)
	if path == "" {
		return config.DefaultConfig(), "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve config path %q: %w", path, err)
	}
	if _, statErr := os.Stat(abs); statErr != nil && !opts.configExplicit {
		slog.Debug("no config file, using defaults", "path", abs)
		return config.DefaultConfig(), "", nil
	}
	cfg, err := config.LoadOrDefault(abs, opts.configExplicit)
	if err != nil {
		return nil, "", err
	}
	return cfg, abs, nil
}

func openHistoryStoreIfEnabled(cfg *config.Config, paths config.ResolvedPaths) (*history.Adapter, error) {
	if !cfg.DB.Enabled {
		return nil, nil
	}
	store, err := history.OpenWithTimeout(paths.DBPath, cfg.DB.BusyTimeout)
	if err != nil {
		if history.IsCorruptError(err) {
			return nil, fmt.Errorf("history database %q is corrupt, remove it to start over: %w", paths.DBPath, err)
		}
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return history.NewAdapter(store), nil
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--history-window must be a Go duration, got %q", value)
	}
	if window <= 0 {
		return 0, fmt.Errorf("--history-window must be positive, got %q", value)
	}
	return window, nil
}

// reporter prints and persists the outcome of each check. Watch mode calls
// emit from the watcher goroutine, so writes are serialized.
type reporter struct {
	mu      sync.Mutex
	app     *coreapp.App
	store   ports.HistoryStore
	opts    cliOptions
	out     io.Writer
	styled  bool
	history ports.HistoryRequest
}

func (r *reporter) emit(ctx context.Context, result ports.CheckResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := report.WriteText(r.out, result.Unused, r.styled); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if len(result.Skipped) > 0 {
		slog.Warn("some class files were skipped", "count", len(result.Skipped))
	}

	var change *history.Change
	if r.store != nil {
		recorded, err := r.app.RecordHistory(ctx, r.store, result, r.history)
		if err != nil {
			return fmt.Errorf("record history: %w", err)
		}
		change = recorded.Change
		if change != nil {
			fmt.Fprintln(r.out, change.Summary())
		}
		if recorded.Report != nil {
			if err := r.writeTrend(*recorded.Report); err != nil {
				return err
			}
		}
	}

	written, err := r.app.GenerateOutputs(ctx, result, change)
	if err != nil {
		return fmt.Errorf("generate outputs: %w", err)
	}
	for _, path := range written {
		slog.Info("wrote output", "path", path)
	}
	return nil
}

func (r *reporter) writeTrend(trend history.TrendReport) error {
	if r.opts.historyTSV != "" {
		data, err := report.RenderTrendTSV(trend)
		if err != nil {
			return fmt.Errorf("render trend tsv: %w", err)
		}
		if err := util.WriteFileWithDirs(r.opts.historyTSV, data, 0o644); err != nil {
			return fmt.Errorf("write trend tsv: %w", err)
		}
	}
	if r.opts.historyJSON != "" {
		data, err := report.RenderTrendJSON(trend)
		if err != nil {
			return fmt.Errorf("render trend json: %w", err)
		}
		if err := util.WriteFileWithDirs(r.opts.historyJSON, data, 0o644); err != nil {
			return fmt.Errorf("write trend json: %w", err)
		}
	}
	return nil
}

// runWatch re-checks on class file changes until ctx is cancelled. The
// config file, when there is one, is reloaded on change; roots given on the
// command line and the history settings stay as they were at startup.
func runWatch(ctx context.Context, application *coreapp.App, svc ports.CheckService, r *reporter, cfg *config.Config, cfgPath string, roots []string) error {
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(application))
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("start observability server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	if cfgPath != "" {
		cfgWatcher := config.NewWatcher(cfgPath, func(next *config.Config) {
			if len(roots) > 0 {
				next.ClassRoots = roots
			}
			next.DB = cfg.DB
			if err := svc.UpdateConfig(ctx, next); err != nil {
				slog.Error("failed to apply reloaded config", "error", err)
				return
			}
			slog.Info("config reloaded", "path", cfgPath)
		})
		if err := cfgWatcher.Start(ctx); err != nil {
			slog.Warn("config reload disabled", "path", cfgPath, "error", err)
		} else {
			defer cfgWatcher.Stop()
		}
	}

	watch := svc.WatchService()
	if err := watch.Subscribe(ctx, func(result ports.CheckResult, err error) {
		if err != nil {
			return
		}
		if err := r.emit(ctx, result); err != nil {
			slog.Error("failed to report results", "error", err)
		}
	}); err != nil {
		return err
	}
	if err := watch.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	slog.Info("watching for class file changes", "roots", application.Paths().ClassRoots)

	<-ctx.Done()
	return watch.Stop()
}

func configureLogging(output io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
