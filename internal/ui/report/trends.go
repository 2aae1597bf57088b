package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"unusedclass/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRunID\tClasses\tUnused\tFramework\tSkipped\tDeltaClasses\tDeltaUnused\tUnusedRatioPct\tAvgUnused\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.ClassCount,
			point.UnusedCount,
			point.FrameworkCount,
			point.SkippedCount,
			point.DeltaClasses,
			point.DeltaUnused,
			point.UnusedRatioPct,
			point.AvgUnused,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
