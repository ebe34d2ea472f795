package subtitles

import (
	"sort"
	"strings"
)

// Candidate is one minute bucket's concatenated cleaned text, offered to the
// alignment search.
type Candidate struct {
	Minute int
	Text   string
}

// Stats summarizes a loaded subtitle file.
type Stats struct {
	TotalEntries    int
	TotalMinutes    int
	DurationSeconds float64
	AvgCharsPerEntry float64
	ValidMinutes    int
	MinChars        int
}

// Index groups subtitle entries into one-minute buckets keyed by the minute
// an entry starts in. Buckets bound the alignment search cost; the
// concatenated cleaned text of a bucket is the unit of comparison.
type Index struct {
	entries  []Entry
	minutes  map[int][]int // minute -> positions into entries
	minChars int
}

// NewIndex builds the minute index over entries. minChars is the minimum
// cleaned-text length for a minute to count as a usable candidate.
func NewIndex(entries []Entry, minChars int) *Index {
	idx := &Index{
		entries:  entries,
		minutes:  make(map[int][]int),
		minChars: minChars,
	}
	for i, entry := range entries {
		minute := int(entry.Start) / 60
		idx.minutes[minute] = append(idx.minutes[minute], i)
	}
	return idx
}

// Entries returns the parsed entries in file order.
func (x *Index) Entries() []Entry {
	return x.entries
}

// MinuteText returns the cleaned text of every entry starting in the given
// minute, joined by single spaces. Empty if the minute has no entries.
func (x *Index) MinuteText(minute int) string {
	positions, ok := x.minutes[minute]
	if !ok {
		return ""
	}
	texts := make([]string, 0, len(positions))
	for _, pos := range positions {
		if cleaned := x.entries[pos].CleanedText; cleaned != "" {
			texts = append(texts, cleaned)
		}
	}
	return strings.Join(texts, " ")
}

// MinuteTimestamp returns the start time of the earliest entry in the given
// minute, falling back to the minute boundary when the bucket is empty.
func (x *Index) MinuteTimestamp(minute int) float64 {
	positions, ok := x.minutes[minute]
	if !ok || len(positions) == 0 {
		return float64(minute) * 60.0
	}
	earliest := x.entries[positions[0]].Start
	for _, pos := range positions[1:] {
		if start := x.entries[pos].Start; start < earliest {
			earliest = start
		}
	}
	return earliest
}

// MaxMinute returns the highest populated minute, or 0 for an empty index.
func (x *Index) MaxMinute() int {
	maxMinute := 0
	for minute := range x.minutes {
		if minute > maxMinute {
			maxMinute = minute
		}
	}
	return maxMinute
}

// MinutesWithMinChars returns the minutes whose concatenated text meets the
// minimum-length threshold, ascending.
func (x *Index) MinutesWithMinChars() []int {
	var valid []int
	for minute := range x.minutes {
		if len(x.MinuteText(minute)) >= x.minChars {
			valid = append(valid, minute)
		}
	}
	sort.Ints(valid)
	return valid
}

// SearchWindow clamps a window of the given radius around centerMinute to
// the populated minute range.
func (x *Index) SearchWindow(centerMinute, window int) (int, int) {
	start := max(0, centerMinute-window)
	end := min(x.MaxMinute(), centerMinute+window)
	return start, end
}

// CandidatesInWindow returns the non-empty minute texts inside the clamped
// window, in ascending minute order. Evaluation order matters downstream:
// similarity ties resolve to the lowest minute.
func (x *Index) CandidatesInWindow(centerMinute, window int) []Candidate {
	start, end := x.SearchWindow(centerMinute, window)
	var results []Candidate
	for minute := start; minute <= end; minute++ {
		if text := x.MinuteText(minute); text != "" {
			results = append(results, Candidate{Minute: minute, Text: text})
		}
	}
	return results
}

// MinChars returns the candidate length threshold the index was built with.
func (x *Index) MinChars() int {
	return x.minChars
}

// ComputeStats summarizes the indexed file.
func (x *Index) ComputeStats() Stats {
	stats := Stats{
		TotalEntries: len(x.entries),
		TotalMinutes: len(x.minutes),
		ValidMinutes: len(x.MinutesWithMinChars()),
		MinChars:     x.minChars,
	}
	totalChars := 0
	for _, entry := range x.entries {
		totalChars += len(entry.CleanedText)
		if entry.End > stats.DurationSeconds {
			stats.DurationSeconds = entry.End
		}
	}
	if len(x.entries) > 0 {
		stats.AvgCharsPerEntry = float64(totalChars) / float64(len(x.entries))
	}
	return stats
}
