package sampling

// AttemptState carries the controller's learning between correction attempts.
// It is owned by the caller driving the retry loop; nothing in this package
// holds state across calls.
type AttemptState struct {
	Attempt       int
	Threshold     float64
	SampleCount   int
	Phase         Consistency
	UsedPositions []float64
}

// NewAttemptState seeds the state for a first attempt.
func NewAttemptState(threshold float64, sampleCount int) AttemptState {
	return AttemptState{
		Attempt:     1,
		Threshold:   threshold,
		SampleCount: sampleCount,
		Phase:       InsufficientData,
	}
}

// Next derives the state for a follow-up attempt from the offsets and success
// rate the current attempt observed. The threshold only steps down when no
// usable correction emerged; successRate may be UnknownRate when nothing was
// aligned at all.
func (s AttemptState) Next(offsets []float64, successRate float64, gotCorrection bool) AttemptState {
	next := s
	next.Attempt = s.Attempt + 1
	next.Phase = AnalyzeTimingConsistency(offsets)
	next.SampleCount = RecommendSampleCount(next.Phase, successRate)
	if !gotCorrection {
		next.Threshold = AdaptiveThreshold(s.Threshold, s.SampleCount)
	}
	return next
}

// RecordPositions remembers sample start times already consumed so retry
// planning avoids them.
func (s *AttemptState) RecordPositions(times []float64) {
	s.UsedPositions = append(s.UsedPositions, times...)
}
