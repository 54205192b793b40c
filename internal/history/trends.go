package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport annotates runs with run-over-run deltas and a moving
// average of unresolved references over the given window.
func BuildTrendReport(runs []Run, window time.Duration) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, fmt.Errorf("no runs available")
	}

	points := make([]TrendPoint, 0, len(runs))
	for i, current := range runs {
		point := TrendPoint{
			Timestamp:        current.Timestamp,
			CommitHash:       current.CommitHash,
			FileCount:        current.FileCount,
			Resolved:         current.Resolved(),
			Unresolved:       current.UnresolvedCount,
			SameFileFailures: current.SameFileFailures,
		}

		if i > 0 {
			prev := runs[i-1]
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaResolved = current.Resolved() - prev.Resolved()
			point.DeltaUnresolved = current.UnresolvedCount - prev.UnresolvedCount
		}

		point.AvgUnresolved = round2(movingAverage(runs, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         runs[0].Timestamp,
		Until:         runs[len(runs)-1].Timestamp,
		Window:        window.String(),
		RunCount:      len(points),
		Points:        points,
	}, nil
}

func movingAverage(runs []Run, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(runs[index].UnresolvedCount)
	}

	cutoff := runs[index].Timestamp.Add(-window)
	total := 0
	count := 0
	for i := index; i >= 0; i-- {
		if runs[i].Timestamp.Before(cutoff) {
			break
		}
		total += runs[i].UnresolvedCount
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
