package offset

import (
	"log/slog"

	"subshift/internal/align"
	"subshift/internal/logging"
	"subshift/internal/services"
	"subshift/internal/subtitles"
)

// minVisibleSeconds is the smallest duration an entry may be compressed to
// when clamping keeps end ahead of start.
const minVisibleSeconds = 0.1

// uniformMinSimilarity is the mean-similarity bar for trusting a single
// global shift over interpolation.
const uniformMinSimilarity = 0.75

// Correction is the chosen time-correction function: either a single uniform
// shift or piecewise-linear interpolation over the offset points.
type Correction struct {
	Uniform       bool
	UniformOffset float64
	Points        []Point
}

// UseUniformCorrection decides whether a single global shift is safe: at
// least two successful matches whose raw offsets cluster within the variance
// threshold and whose mean similarity clears the trust bar. Anything looser
// goes to interpolation, which can absorb genuine drift across the timeline.
func UseUniformCorrection(matches []align.Match, varianceThreshold float64) bool {
	successful := align.Successful(matches)
	if len(successful) < 2 {
		return false
	}

	offsets := make([]float64, len(successful))
	similaritySum := 0.0
	for i, match := range successful {
		offsets[i] = match.Offset()
		similaritySum += match.Similarity
	}

	if populationStdDev(offsets) > varianceThreshold {
		return false
	}
	return similaritySum/float64(len(successful)) >= uniformMinSimilarity
}

// WeightedUniformOffset is the similarity-weighted mean of the points'
// offsets. Low-confidence observations influence the result proportionally
// less than a plain mean would allow.
func WeightedUniformOffset(points []Point) float64 {
	weightSum := 0.0
	weightedOffsets := 0.0
	for _, p := range points {
		weightedOffsets += p.Offset * p.Similarity
		weightSum += p.Similarity
	}
	if weightSum == 0 {
		return mean(offsetsOf(points))
	}
	return weightedOffsets / weightSum
}

// InterpolateAt evaluates the piecewise-linear offset function at timestamp.
// Outside the observed range the nearest endpoint's offset is used unchanged;
// extrapolating the line would run away far from evidence. Points must be
// sorted by timestamp.
func InterpolateAt(points []Point, timestamp float64) float64 {
	if len(points) == 0 {
		return 0.0
	}
	if len(points) == 1 {
		return points[0].Offset
	}
	if timestamp <= points[0].Timestamp {
		return points[0].Offset
	}
	if timestamp >= points[len(points)-1].Timestamp {
		return points[len(points)-1].Offset
	}

	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		if timestamp < p1.Timestamp || timestamp > p2.Timestamp {
			continue
		}
		if p2.Timestamp == p1.Timestamp {
			return p1.Offset
		}
		ratio := (timestamp - p1.Timestamp) / (p2.Timestamp - p1.Timestamp)
		return p1.Offset + ratio*(p2.Offset-p1.Offset)
	}
	return 0.0
}

// OffsetAt evaluates the correction at a timestamp.
func (c Correction) OffsetAt(timestamp float64) float64 {
	if c.Uniform {
		return c.UniformOffset
	}
	return InterpolateAt(c.Points, timestamp)
}

// BuildCorrection runs the full pipeline from matches to a correction
// function: offset extraction, outlier filtering, and the uniform-versus-
// interpolated decision. Returns ErrNoEvidence when no successful match
// exists; a computed correction that happens to shift nothing is a distinct,
// reportable outcome.
func BuildCorrection(matches []align.Match, filter Filter, varianceThreshold float64, logger *slog.Logger) (Correction, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	points := SampleOffsets(matches, filter, logger)
	if len(points) == 0 {
		return Correction{}, services.Wrap(services.ErrNoEvidence, "offset", "build correction",
			"no successful matches to derive offsets from", nil)
	}

	if UseUniformCorrection(matches, varianceThreshold) {
		uniform := WeightedUniformOffset(points)
		logger.Info("using uniform correction",
			logging.Float64("offset_seconds", uniform),
			logging.Int("points", len(points)),
		)
		return Correction{Uniform: true, UniformOffset: uniform, Points: points}, nil
	}

	logger.Info("using interpolated correction", logging.Int("points", len(points)))
	return Correction{Points: points}, nil
}

// ApplyCorrections produces a corrected copy of entries: each entry's offset
// is evaluated at its start time and subtracted from both timestamps, with
// start clamped to zero and end held at least minVisibleSeconds after start.
// Ordering, indices, and text are untouched.
func ApplyCorrections(entries []subtitles.Entry, correction Correction) []subtitles.Entry {
	corrected := make([]subtitles.Entry, len(entries))
	for i, entry := range entries {
		shift := correction.OffsetAt(entry.Start)

		entry.Start -= shift
		entry.End -= shift
		if entry.Start < 0 {
			entry.Start = 0
		}
		if entry.End < entry.Start+minVisibleSeconds {
			entry.End = entry.Start + minVisibleSeconds
		}
		corrected[i] = entry
	}
	return corrected
}
