package offset

import (
	"fmt"
	"math"
	"strings"
)

// Filter selects the outlier-rejection strategy applied to offset points.
// The strategies share no state, so a tagged value dispatched by a switch is
// all the polymorphism needed.
type Filter int

const (
	// FilterAdaptive bounds points by the median and a MAD-scaled radius
	// that widens with the point count.
	FilterAdaptive Filter = iota
	// FilterIQR applies the 1.5x interquartile-range rule, falling back to
	// a fixed 2.5x MAD rule when quartiles cannot be computed.
	FilterIQR
	// FilterZScore rejects points more than two standard deviations from
	// the mean. Zero deviation keeps every point.
	FilterZScore
)

// ParseFilter maps a config or flag string to a Filter.
func ParseFilter(value string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "adaptive", "":
		return FilterAdaptive, nil
	case "iqr":
		return FilterIQR, nil
	case "zscore":
		return FilterZScore, nil
	default:
		return FilterAdaptive, fmt.Errorf("unknown outlier filter %q", value)
	}
}

func (f Filter) String() string {
	switch f {
	case FilterIQR:
		return "iqr"
	case FilterZScore:
		return "zscore"
	default:
		return "adaptive"
	}
}

func filterPoints(points []Point, filter Filter) []Point {
	switch filter {
	case FilterIQR:
		return filterIQR(points)
	case FilterZScore:
		return filterZScore(points)
	default:
		return filterAdaptive(points)
	}
}

func offsetsOf(points []Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Offset
	}
	return values
}

func keepWithin(points []Point, low, high float64) []Point {
	kept := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Offset >= low && p.Offset <= high {
			kept = append(kept, p)
		}
	}
	return kept
}

// filterAdaptive keeps points inside a median-centered band. The band is at
// least 3 seconds wide for small sets and 5 seconds for larger ones so tight
// clusters do not reject legitimate drift.
func filterAdaptive(points []Point) []Point {
	values := offsetsOf(points)
	med := median(values)
	mad := medianAbsoluteDeviation(values)

	var bound float64
	if len(points) <= 5 {
		bound = math.Max(3.0, 1.5*mad)
	} else {
		bound = math.Max(5.0, 2.0*mad)
	}
	return keepWithin(points, med-bound, med+bound)
}

func filterIQR(points []Point) []Point {
	values := offsetsOf(points)
	q1, q3, err := quartiles(values)
	if err != nil {
		med := median(values)
		bound := 2.5 * medianAbsoluteDeviation(values)
		return keepWithin(points, med-bound, med+bound)
	}
	iqr := q3 - q1
	return keepWithin(points, q1-1.5*iqr, q3+1.5*iqr)
}

func filterZScore(points []Point) []Point {
	values := offsetsOf(points)
	sigma := populationStdDev(values)
	if sigma == 0 {
		return points
	}
	m := mean(values)
	return keepWithin(points, m-2.0*sigma, m+2.0*sigma)
}
