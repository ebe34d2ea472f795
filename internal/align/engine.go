package align

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"subshift/internal/audio"
	"subshift/internal/logging"
	"subshift/internal/subtitles"
	"subshift/internal/textutil"
)

// Match pairs an audio sample with the best-scoring subtitle minute. A
// non-passing best match is still produced so callers can diagnose
// near-misses; IsMatch distinguishes the two.
type Match struct {
	SampleIndex       int
	SampleTimestamp   float64
	AudioText         string
	SubtitleMinute    int
	SubtitleTimestamp float64
	SubtitleText      string
	Distance          int
	Similarity        float64
	IsMatch           bool
}

// Offset is the signed correction evidence this match carries: positive means
// the subtitles run ahead of the reference media.
func (m Match) Offset() float64 {
	return m.SubtitleTimestamp - m.SampleTimestamp
}

// Stats summarizes an alignment pass.
type Stats struct {
	TotalMatches      int
	SuccessfulMatches int
	SuccessRate       float64
	AvgSimilarity     float64
	AvgDistance       float64
	Threshold         float64
	WindowMinutes     int
}

// Engine scores transcribed samples against a subtitle index.
type Engine struct {
	scorer        textutil.Scorer
	threshold     float64
	window        int
	minChars      int
	maxConcurrent int
	logger        *slog.Logger
}

// NewEngine builds an alignment engine. maxConcurrent bounds the worker pool;
// values below 1 degrade to serial evaluation.
func NewEngine(threshold float64, windowMinutes, minChars, maxConcurrent int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Engine{
		scorer:        textutil.Scorer{SearchWindowMinutes: windowMinutes},
		threshold:     threshold,
		window:        windowMinutes,
		minChars:      minChars,
		maxConcurrent: maxConcurrent,
		logger:        logging.NewComponentLogger(logger, "align"),
	}
}

// Threshold returns the active similarity threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// FindBestMatch scans the minute buckets inside the search window around the
// sample's timestamp and returns the highest-scoring candidate. Candidates
// are evaluated in ascending minute order, so similarity ties resolve to the
// lowest minute. The minimum-length filter applies to subtitle candidates
// only; a short transcription is still scored against every candidate in the
// window. Returns nil when the sample has no transcription or no candidate
// meets the minimum length.
func (e *Engine) FindBestMatch(sample audio.Sample, index *subtitles.Index) *Match {
	if !sample.HasTranscription() {
		e.logger.Warn("sample has no transcription", logging.Int(logging.FieldSample, sample.Index))
		return nil
	}

	transcription := textutil.Normalize(sample.Transcription)
	centerMinute := int(sample.StartTimestamp) / 60
	candidates := index.CandidatesInWindow(centerMinute, e.window)

	var best *Match
	bestSimilarity := 0.0

	for _, candidate := range candidates {
		if len(candidate.Text) < e.minChars {
			continue
		}

		distance, similarity := e.scorer.WeightedSimilarity(
			transcription, candidate.Text, sample.StartTimestamp, candidate.Minute)

		if best != nil && similarity <= bestSimilarity {
			continue
		}

		best = &Match{
			SampleIndex:       sample.Index,
			SampleTimestamp:   sample.StartTimestamp,
			AudioText:         sample.Transcription,
			SubtitleMinute:    candidate.Minute,
			SubtitleTimestamp: index.MinuteTimestamp(candidate.Minute),
			SubtitleText:      candidate.Text,
			Distance:          distance,
			Similarity:        similarity,
			IsMatch:           similarity >= e.threshold,
		}
		bestSimilarity = similarity
	}

	if best == nil {
		e.logger.Debug("no candidates for sample", logging.Int(logging.FieldSample, sample.Index))
		return nil
	}

	e.logger.Debug("best candidate for sample",
		logging.Int(logging.FieldSample, sample.Index),
		logging.Int("minute", best.SubtitleMinute),
		logging.Float64("similarity", best.Similarity),
		logging.Bool("passed", best.IsMatch),
	)
	return best
}

// AlignSamples scores every sample against the index. Samples share no state,
// so evaluation runs on a bounded pool; results are re-ordered by sample
// index before returning since downstream offset math depends on timeline
// order, not arrival order.
func (e *Engine) AlignSamples(ctx context.Context, samples []audio.Sample, index *subtitles.Index) ([]Match, error) {
	results := make([]*Match, len(samples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, sample := range samples {
		i, sample := i, sample
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.FindBestMatch(sample, index)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matches []Match
	for _, match := range results {
		if match != nil {
			matches = append(matches, *match)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SampleIndex < matches[j].SampleIndex
	})

	successful := len(Successful(matches))
	e.logger.Info("alignment pass complete",
		logging.Int("samples", len(samples)),
		logging.Int("matches", len(matches)),
		logging.Int("successful", successful),
		logging.Float64("threshold", e.threshold),
	)
	return matches, nil
}

// Successful filters matches that cleared the threshold.
func Successful(matches []Match) []Match {
	var passed []Match
	for _, match := range matches {
		if match.IsMatch {
			passed = append(passed, match)
		}
	}
	return passed
}

// ComputeStats summarizes an alignment pass for reporting.
func (e *Engine) ComputeStats(matches []Match) Stats {
	stats := Stats{
		TotalMatches:  len(matches),
		Threshold:     e.threshold,
		WindowMinutes: e.window,
	}
	if len(matches) == 0 {
		return stats
	}

	similaritySum := 0.0
	distanceSum := 0
	distanceCount := 0
	for _, match := range matches {
		similaritySum += match.Similarity
		if match.Distance != textutil.NoDistance {
			distanceSum += match.Distance
			distanceCount++
		}
		if match.IsMatch {
			stats.SuccessfulMatches++
		}
	}
	stats.SuccessRate = float64(stats.SuccessfulMatches) / float64(len(matches))
	stats.AvgSimilarity = similaritySum / float64(len(matches))
	if distanceCount > 0 {
		stats.AvgDistance = float64(distanceSum) / float64(distanceCount)
	}
	return stats
}
