package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, p := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("exclude.dirs[%d] invalid pattern %q: %w", i, p, err)
		}
	}
	for i, p := range cfg.Exclude.Files {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("exclude.files[%d] invalid pattern %q: %w", i, p, err)
		}
	}
	for i, p := range cfg.Exclude.Classes {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("exclude.classes[%d] invalid pattern %q: %w", i, p, err)
		}
		if strings.Contains(p, ".") && !strings.Contains(p, "/") {
			return fmt.Errorf("exclude.classes[%d] %q must use internal names (com/acme/Type), not dotted names", i, p)
		}
	}
	return nil
}

func validateFramework(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Framework.Markers))
	for i, marker := range cfg.Framework.Markers {
		ref := fmt.Sprintf("framework.markers[%d]", i)
		if len(marker) < 3 || !strings.HasPrefix(marker, "L") || !strings.HasSuffix(marker, ";") {
			return fmt.Errorf("%s %q must be an annotation descriptor such as Lcom/acme/Entry;", ref, marker)
		}
		if strings.Contains(marker, ".") {
			return fmt.Errorf("%s %q must use '/' separators", ref, marker)
		}
		if seen[marker] {
			return fmt.Errorf("duplicate framework marker %q", marker)
		}
		seen[marker] = true
	}
	return nil
}

func validateScan(cfg *Config) error {
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.MaxDepth < 1 {
		return fmt.Errorf("scan.max_depth must be >= 1, got %d", cfg.Scan.MaxDepth)
	}
	if cfg.Scan.MaxFilesPerSecond < 0 {
		return fmt.Errorf("scan.max_files_per_second must be >= 0, got %d", cfg.Scan.MaxFilesPerSecond)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	outputs := make(map[string]string)
	checkConflict := func(path, name string) error {
		if path == "" {
			return nil
		}
		path = filepath.Clean(path)
		if owner, exists := outputs[path]; exists {
			return fmt.Errorf("output conflict: %s and %s share the same path %q", owner, name, path)
		}
		outputs[path] = name
		return nil
	}

	if err := checkConflict(cfg.Output.TSV, "output.tsv"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.JSON, "output.json"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.SARIF, "output.sarif"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.DOT, "output.dot"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.Markdown, "output.markdown"); err != nil {
		return err
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	if strings.TrimSpace(cfg.DB.Project) == "" {
		return fmt.Errorf("db.project must not be empty")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("observability.metrics_addr %q must be host:port: %w", addr, err)
		}
	}
	if endpoint := cfg.Observability.OTLPEndpoint; endpoint != "" {
		if strings.Contains(endpoint, "://") {
			return fmt.Errorf("observability.otlp_endpoint %q must be host:port without a scheme", endpoint)
		}
	}
	return nil
}

// Validate runs every validator and returns all failures.
func Validate(cfg *Config) []error {
	var errs []error

	if err := validateVersion(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateExclude(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateFramework(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateScan(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateWatch(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutput(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateDatabase(cfg); err != nil {
		errs = append(errs, err)
	}
	if err := validateObservability(cfg); err != nil {
		errs = append(errs, err)
	}
	return errs
}
