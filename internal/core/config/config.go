package config

import "time"

// DefaultConfigPath is read when no --config flag is given. A missing file
// at this path is not an error.
const DefaultConfigPath = "unusedclass.toml"

type Config struct {
	Version       int           `toml:"version"`
	ClassRoots    []string      `toml:"class_roots"`
	Exclude       Exclude       `toml:"exclude"`
	Framework     Framework     `toml:"framework"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	DB            Database      `toml:"db"`
	Observability Observability `toml:"observability"`
}

type Exclude struct {
	Dirs    []string `toml:"dirs"`    // Directory base names skipped by the walker
	Files   []string `toml:"files"`   // File base names skipped by the walker
	Classes []string `toml:"classes"` // Internal names hidden from the report
}

type Framework struct {
	UseDefaults *bool    `toml:"use_defaults"`
	Markers     []string `toml:"markers"`
}

type Scan struct {
	Workers           int   `toml:"workers"`
	MaxDepth          int   `toml:"max_depth"`
	FollowSymlinks    *bool `toml:"follow_symlinks"`
	MaxFilesPerSecond int   `toml:"max_files_per_second"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Output struct {
	TSV      string `toml:"tsv"`
	JSON     string `toml:"json"`
	SARIF    string `toml:"sarif"`
	DOT      string `toml:"dot"`
	Markdown string `toml:"markdown"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	Project     string        `toml:"project"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func (f Framework) DefaultsEnabled() bool {
	if f.UseDefaults == nil {
		return true
	}
	return *f.UseDefaults
}

func (s Scan) SymlinksFollowed() bool {
	if s.FollowSymlinks == nil {
		return true
	}
	return *s.FollowSymlinks
}

// HasOutputs reports whether any report file is configured.
func (o Output) HasOutputs() bool {
	return o.TSV != "" || o.JSON != "" || o.SARIF != "" || o.DOT != "" || o.Markdown != ""
}
