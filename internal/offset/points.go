package offset

import (
	"log/slog"
	"sort"

	"subshift/internal/align"
	"subshift/internal/logging"
)

// Point is one offset observation: at Timestamp on the reference timeline the
// subtitles run Offset seconds ahead (negative: behind). Similarity carries
// the confidence of the match that produced it.
type Point struct {
	Timestamp  float64
	Offset     float64
	Similarity float64
}

// PointStats summarizes a set of offset points for reporting.
type PointStats struct {
	Count     int
	MinOffset float64
	MaxOffset float64
	AvgOffset float64
	Range     float64
}

// SampleOffsets extracts offset points from the successful matches, applies
// the selected outlier filter, and returns the points sorted by timestamp.
// Filtering is skipped below 3 points. If a filter would retain fewer than
// half the input points it is considered unsafe and the unfiltered set is
// kept, so the correction is never starved of data.
func SampleOffsets(matches []align.Match, filter Filter, logger *slog.Logger) []Point {
	if logger == nil {
		logger = logging.NewNop()
	}

	var points []Point
	for _, match := range align.Successful(matches) {
		points = append(points, Point{
			Timestamp:  match.SampleTimestamp,
			Offset:     match.Offset(),
			Similarity: match.Similarity,
		})
	}
	if len(points) == 0 {
		logger.Warn("no successful matches for offset calculation")
		return nil
	}

	sortByTimestamp(points)

	if len(points) >= 3 {
		filtered := filterPoints(points, filter)
		// ceil(n/2)
		minimum := (len(points) + 1) / 2
		if len(filtered) < minimum {
			logger.Warn("outlier filter retained too few points, keeping all",
				logging.String("filter", filter.String()),
				logging.Int("before", len(points)),
				logging.Int("after", len(filtered)),
			)
		} else {
			if removed := len(points) - len(filtered); removed > 0 {
				logger.Info("outlier filtering removed points",
					logging.String("filter", filter.String()),
					logging.Int("removed", removed),
					logging.Int("kept", len(filtered)),
				)
			}
			points = filtered
			sortByTimestamp(points)
		}
	}

	return points
}

func sortByTimestamp(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})
}

// ComputeStats summarizes the offset points.
func ComputeStats(points []Point) PointStats {
	if len(points) == 0 {
		return PointStats{}
	}
	stats := PointStats{
		Count:     len(points),
		MinOffset: points[0].Offset,
		MaxOffset: points[0].Offset,
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Offset
		if p.Offset < stats.MinOffset {
			stats.MinOffset = p.Offset
		}
		if p.Offset > stats.MaxOffset {
			stats.MaxOffset = p.Offset
		}
	}
	stats.AvgOffset = sum / float64(len(points))
	stats.Range = stats.MaxOffset - stats.MinOffset
	return stats
}
