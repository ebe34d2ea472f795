package sampling

import "math"

// Consistency grades how tightly the observed offsets cluster.
type Consistency int

const (
	// InsufficientData means fewer than three offsets were observed.
	InsufficientData Consistency = iota
	// Consistent offsets cluster tightly; a small confirmation budget is enough.
	Consistent
	// Moderate offsets show some spread; a standard budget applies.
	Moderate
	// Inconsistent offsets scatter widely; the content is hard and needs the
	// largest budget.
	Inconsistent
)

func (c Consistency) String() string {
	switch c {
	case Consistent:
		return "consistent"
	case Moderate:
		return "moderate"
	case Inconsistent:
		return "inconsistent"
	default:
		return "insufficient_data"
	}
}

// UnknownRate marks an absent success-rate observation for
// RecommendSampleCount.
const UnknownRate = -1.0

const (
	consistentStdDev   = 2.0
	consistentRange    = 3.0
	inconsistentStdDev = 5.0
	inconsistentRange  = 8.0

	maxRecommendedSamples = 40
	minRecommendedSamples = 6

	thresholdFloor = 0.4
)

// baseSampleCounts are empirically tuned budgets per consistency grade.
var baseSampleCounts = map[Consistency]int{
	Consistent:       12,
	Moderate:         24,
	Inconsistent:     40,
	InsufficientData: 16,
}

// AnalyzeTimingConsistency grades a set of observed offsets. Fewer than three
// points cannot support a judgement; a tight cluster needs both low standard
// deviation and a narrow range, while either a wide deviation or a wide range
// marks the content as inconsistent.
func AnalyzeTimingConsistency(offsets []float64) Consistency {
	if len(offsets) < 3 {
		return InsufficientData
	}

	sigma := stdDev(offsets)
	spread := valueRange(offsets)

	switch {
	case sigma <= consistentStdDev && spread <= consistentRange:
		return Consistent
	case sigma >= inconsistentStdDev || spread >= inconsistentRange:
		return Inconsistent
	default:
		return Moderate
	}
}

// RecommendSampleCount maps a consistency grade to the next attempt's sample
// budget. A known success rate adjusts the base: below 0.5 the budget grows
// by 1.4x (capped), above 0.8 it shrinks by 0.8x (floored). Pass UnknownRate
// when no attempt has completed yet.
func RecommendSampleCount(consistency Consistency, successRate float64) int {
	recommended := baseSampleCounts[consistency]
	if recommended == 0 {
		recommended = baseSampleCounts[InsufficientData]
	}

	if successRate >= 0 {
		if successRate < 0.5 {
			recommended = min(maxRecommendedSamples, int(float64(recommended)*1.4))
		} else if successRate > 0.8 {
			recommended = max(minRecommendedSamples, int(float64(recommended)*0.8))
		}
	}
	return recommended
}

// AdaptiveThreshold steps the similarity threshold down for a retry. The
// step-down table only retreats from a high bar; a large sample count that
// still failed is evidence the content is genuinely hard and earns a further
// reduction, bounded by a hard floor. Thresholds already below the table
// return unchanged.
func AdaptiveThreshold(current float64, sampleCount int) float64 {
	var adaptive float64
	switch {
	case current >= 0.75:
		adaptive = 0.6
	case current >= 0.65:
		adaptive = 0.5
	case current >= 0.55:
		adaptive = 0.45
	default:
		return current
	}

	if sampleCount >= 20 {
		adaptive -= 0.1
	} else if sampleCount >= 10 {
		adaptive -= 0.05
	}
	return math.Max(thresholdFloor, adaptive)
}

// EstimateCost approximates the transcription API spend for a sample budget,
// at the prevailing per-minute rate.
func EstimateCost(sampleCount, sampleSeconds int) float64 {
	const costPerMinute = 0.006
	minutes := float64(sampleCount*sampleSeconds) / 60.0
	return minutes * costPerMinute
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

func valueRange(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}
