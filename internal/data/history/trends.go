package history

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// BuildTrendReport turns chronologically ordered snapshots into trend points
// with deltas against the previous snapshot and a moving average of the
// unused count over window.
func BuildTrendReport(projectKey string, snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:      current.Timestamp,
			RunID:          current.RunID,
			ClassCount:     current.ClassCount,
			UnusedCount:    current.UnusedCount,
			FrameworkCount: current.FrameworkCount,
			SkippedCount:   current.SkippedCount,
		}
		if current.ClassCount > 0 {
			point.UnusedRatioPct = round2(float64(current.UnusedCount) / float64(current.ClassCount) * 100)
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaClasses = current.ClassCount - prev.ClassCount
			point.DeltaUnused = current.UnusedCount - prev.UnusedCount
		}

		point.AvgUnused = round2(movingAverage(snapshots, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    projectKey,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverage(snapshots []Snapshot, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(snapshots[index].UnusedCount)
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	total := 0
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		total += snapshots[i].UnusedCount
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// Compare reports which classes became unused and which stopped being
// unused between prev and current. Both name lists must be populated.
func Compare(prev, current Snapshot) Change {
	before := make(map[string]bool, len(prev.Unused))
	for _, name := range prev.Unused {
		before[name] = true
	}
	after := make(map[string]bool, len(current.Unused))
	for _, name := range current.Unused {
		after[name] = true
	}

	change := Change{
		PreviousRunID:  prev.RunID,
		NewlyUnused:    make([]string, 0),
		NoLongerUnused: make([]string, 0),
		DeltaUnused:    len(current.Unused) - len(prev.Unused),
	}
	for name := range after {
		if !before[name] {
			change.NewlyUnused = append(change.NewlyUnused, name)
		}
	}
	for name := range before {
		if !after[name] {
			change.NoLongerUnused = append(change.NoLongerUnused, name)
		}
	}
	sort.Strings(change.NewlyUnused)
	sort.Strings(change.NoLongerUnused)
	return change
}

// Summary is the one-line trend shown after a check.
func (c Change) Summary() string {
	return fmt.Sprintf("Trend: %+d unused (%d newly unused, %d no longer unused)",
		c.DeltaUnused, len(c.NewlyUnused), len(c.NoLongerUnused))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
