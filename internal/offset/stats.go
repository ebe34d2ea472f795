package offset

import (
	"fmt"
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev divides by n, not n-1. The offsets are the whole
// population of evidence, not a sample of a larger one.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// medianAbsoluteDeviation is the median of absolute deviations from the
// median, a robust spread estimate unaffected by single wild points.
func medianAbsoluteDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - m)
	}
	return median(deviations)
}

// quartiles returns the 25th and 75th percentiles by linear interpolation.
// Errors when the set is too small for meaningful quartiles.
func quartiles(values []float64) (float64, float64, error) {
	if len(values) < 4 {
		return 0, 0, fmt.Errorf("need at least 4 values for quartiles, have %d", len(values))
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75), nil
}

func percentile(sorted []float64, p float64) float64 {
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
