package audio

import (
	"math/rand"
	"sort"
)

// Planner selects sample start times on the media timeline. Positions lie on
// a fixed interval grid beginning at a start offset; the requested count is
// drawn randomly from the grid and returned sorted so extraction proceeds in
// timeline order.
type Planner struct {
	IntervalSeconds    int
	StartOffsetSeconds int
	SampleSeconds      int
	MaxPositions       int

	rng *rand.Rand
}

// NewPlanner builds a planner from minute-based configuration. rng may be nil
// for a time-seeded source; tests inject a fixed seed.
func NewPlanner(intervalMinutes, startOffsetMinutes, sampleSeconds, maxPositions int, rng *rand.Rand) *Planner {
	return &Planner{
		IntervalSeconds:    intervalMinutes * 60,
		StartOffsetSeconds: startOffsetMinutes * 60,
		SampleSeconds:      sampleSeconds,
		MaxPositions:       maxPositions,
		rng:                rng,
	}
}

func (p *Planner) intn(n int) int {
	if p.rng != nil {
		return p.rng.Intn(n)
	}
	return rand.Intn(n)
}

// positions returns the grid of candidate start times that fit a full sample
// before the end of the media, capped at MaxPositions.
func (p *Planner) positions(duration float64) []float64 {
	var available []float64
	for pos := p.StartOffsetSeconds; float64(pos+p.SampleSeconds) < duration; pos += p.IntervalSeconds {
		available = append(available, float64(pos))
		if p.MaxPositions > 0 && len(available) == p.MaxPositions {
			break
		}
	}
	return available
}

// SampleTimes picks up to numSamples start times at random from the position
// grid, sorted ascending. Short media may yield fewer positions than
// requested, or none at all.
func (p *Planner) SampleTimes(duration float64, numSamples int) []float64 {
	available := p.positions(duration)
	if numSamples > len(available) {
		numSamples = len(available)
	}
	if numSamples <= 0 {
		return nil
	}

	picked := make([]float64, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		j := p.intn(len(available))
		picked = append(picked, available[j])
		available = append(available[:j], available[j+1:]...)
	}
	sort.Float64s(picked)
	return picked
}

// RetryTimes picks up to count start times from grid positions not already
// used, for re-sampling after failed extractions or transcriptions. The
// MaxPositions cap does not apply here so retries can reach deeper into long
// media.
func (p *Planner) RetryTimes(duration float64, used []float64, count int) []float64 {
	usedSet := make(map[int]struct{}, len(used))
	for _, t := range used {
		usedSet[int(t)] = struct{}{}
	}

	var available []float64
	for pos := p.StartOffsetSeconds; float64(pos+p.SampleSeconds) < duration; pos += p.IntervalSeconds {
		if _, taken := usedSet[pos]; !taken {
			available = append(available, float64(pos))
		}
	}

	if count > len(available) {
		count = len(available)
	}
	if count <= 0 {
		return nil
	}

	picked := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		j := p.intn(len(available))
		picked = append(picked, available[j])
		available = append(available[:j], available[j+1:]...)
	}
	sort.Float64s(picked)
	return picked
}
