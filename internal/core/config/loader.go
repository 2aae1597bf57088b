package config

import (
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"unusedclass/internal/core/errors"

	"github.com/BurntSushi/toml"
)

// Load reads, defaults and validates the TOML file at path. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, withPath(errors.Wrap(err, errors.CodeNotFound, "config file not found"), path)
		}
		return nil, withPath(errors.Wrap(err, errors.CodeIOFailure, "read config file"), path)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, withPath(errors.Wrap(err, errors.CodeValidationError, "parse config file"), path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		err := errors.Newf(errors.CodeValidationError, "unknown config keys: %s", strings.Join(keys, ", "))
		return nil, withPath(err, path)
	}

	applyDefaults(&cfg)
	normalize(&cfg)
	ApplyEnvOverrides(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, withPath(errors.Wrap(errs[0], errors.CodeValidationError, "invalid config"), path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file yields the default
// configuration unless the caller asked for that file explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultConfig(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		if !explicit && errors.IsCode(err, errors.CodeNotFound) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig is the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	ApplyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}
	if cfg.Scan.MaxDepth == 0 {
		cfg.Scan.MaxDepth = 64
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "data/database/history.db"
	}
	if strings.TrimSpace(cfg.DB.Project) == "" {
		cfg.DB.Project = "default"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}
}

func normalize(cfg *Config) {
	cfg.ClassRoots = trimAll(cfg.ClassRoots)
	cfg.Exclude.Dirs = trimAll(cfg.Exclude.Dirs)
	cfg.Exclude.Files = trimAll(cfg.Exclude.Files)
	cfg.Exclude.Classes = trimAll(cfg.Exclude.Classes)
	cfg.Framework.Markers = trimAll(cfg.Framework.Markers)
	cfg.Output.TSV = strings.TrimSpace(cfg.Output.TSV)
	cfg.Output.JSON = strings.TrimSpace(cfg.Output.JSON)
	cfg.Output.SARIF = strings.TrimSpace(cfg.Output.SARIF)
	cfg.Output.DOT = strings.TrimSpace(cfg.Output.DOT)
	cfg.Output.Markdown = strings.TrimSpace(cfg.Output.Markdown)
	cfg.DB.Path = strings.TrimSpace(cfg.DB.Path)
	cfg.DB.Project = strings.TrimSpace(cfg.DB.Project)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func withPath(err error, path string) error {
	return errors.AddContext(err, errors.CtxPath, path)
}
