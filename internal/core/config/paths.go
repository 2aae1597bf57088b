package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvedPaths holds every configured path made absolute against the
// directory of the config file.
type ResolvedPaths struct {
	BaseDir    string
	ClassRoots []string
	DBPath     string
	Output     Output
}

func ResolvePaths(cfg *Config, base string) (ResolvedPaths, error) {
	if strings.TrimSpace(base) == "" {
		return ResolvedPaths{}, fmt.Errorf("base directory must not be empty")
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return ResolvedPaths{}, fmt.Errorf("resolve base directory: %w", err)
	}

	roots := make([]string, 0, len(cfg.ClassRoots))
	for _, root := range cfg.ClassRoots {
		roots = append(roots, ResolveRelative(base, root))
	}

	return ResolvedPaths{
		BaseDir:    base,
		ClassRoots: roots,
		DBPath:     ResolveRelative(base, cfg.DB.Path),
		Output: Output{
			TSV:      resolveOptional(base, cfg.Output.TSV),
			JSON:     resolveOptional(base, cfg.Output.JSON),
			SARIF:    resolveOptional(base, cfg.Output.SARIF),
			DOT:      resolveOptional(base, cfg.Output.DOT),
			Markdown: resolveOptional(base, cfg.Output.Markdown),
		},
	}, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

func resolveOptional(base, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return ResolveRelative(base, value)
}
