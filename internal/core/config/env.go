package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: UNUSEDCLASS_[SECTION]_[KEY] (e.g., UNUSEDCLASS_SCAN_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvInt(&cfg.Scan.Workers, "UNUSEDCLASS_SCAN_WORKERS")
	setEnvInt(&cfg.Scan.MaxDepth, "UNUSEDCLASS_SCAN_MAX_DEPTH")
	setEnvInt(&cfg.Scan.MaxFilesPerSecond, "UNUSEDCLASS_SCAN_MAX_FILES_PER_SECOND")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "UNUSEDCLASS_WATCH_DEBOUNCE")

	// Database
	setEnvBool(&cfg.DB.Enabled, "UNUSEDCLASS_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "UNUSEDCLASS_DB_PATH")
	setEnvString(&cfg.DB.Project, "UNUSEDCLASS_DB_PROJECT")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "UNUSEDCLASS_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "UNUSEDCLASS_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.TrimSpace(val)
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		} else {
			slog.Warn("ignoring invalid env override", "key", key, "value", val)
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(val)))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		} else {
			slog.Warn("ignoring invalid env override", "key", key, "value", val)
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		} else {
			slog.Warn("ignoring invalid env override", "key", key, "value", val)
		}
	}
}
