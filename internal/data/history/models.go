package history

import "time"

const SchemaVersion = 1

// Snapshot is the persisted summary of one check.
type Snapshot struct {
	ProjectKey     string    `json:"project_key"`
	RunID          string    `json:"run_id"`
	SchemaVersion  int       `json:"schema_version"`
	Timestamp      time.Time `json:"timestamp"`
	ClassCount     int       `json:"class_count"`
	UnusedCount    int       `json:"unused_count"`
	FrameworkCount int       `json:"framework_count"`
	SkippedCount   int       `json:"skipped_count"`
	DuplicateCount int       `json:"duplicate_count"`
	// Unused is only populated by Latest and LoadUnused; LoadSnapshots
	// returns counts only.
	Unused []string `json:"unused,omitempty"`
}

type TrendPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	RunID          string    `json:"run_id"`
	ClassCount     int       `json:"class_count"`
	UnusedCount    int       `json:"unused_count"`
	FrameworkCount int       `json:"framework_count"`
	SkippedCount   int       `json:"skipped_count"`
	DeltaClasses   int       `json:"delta_classes"`
	DeltaUnused    int       `json:"delta_unused"`
	UnusedRatioPct float64   `json:"unused_ratio_pct"`
	AvgUnused      float64   `json:"avg_unused"`
	WindowHours    float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	ProjectKey    string       `json:"project_key"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}

// Change compares the unused sets of two consecutive snapshots.
type Change struct {
	PreviousRunID  string   `json:"previous_run_id"`
	NewlyUnused    []string `json:"newly_unused"`
	NoLongerUnused []string `json:"no_longer_unused"`
	DeltaUnused    int      `json:"delta_unused"`
}
