package subtitles

import (
	"fmt"
	"strings"
	"testing"
)

func buildTestIndex(t *testing.T, minChars int) *Index {
	t.Helper()
	// Entries in minutes 0, 1, 1, and 5. Minute 1 holds two entries so its
	// bucket text concatenates.
	content := `1
00:00:10,000 --> 00:00:12,000
First line of dialogue here

2
00:01:05,000 --> 00:01:07,000
Second entry with some words

3
00:01:40,000 --> 00:01:43,000
Third entry continues the minute

4
00:05:30,000 --> 00:05:33,000
Distant entry after a silent gap
`
	entries := Parse(content)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	return NewIndex(entries, minChars)
}

func TestMinuteTextConcatenation(t *testing.T) {
	idx := buildTestIndex(t, 40)
	text := idx.MinuteText(1)
	want := "second entry with some words third entry continues the minute"
	if text != want {
		t.Fatalf("MinuteText(1) = %q, want %q", text, want)
	}
	if idx.MinuteText(3) != "" {
		t.Fatal("expected empty text for unpopulated minute")
	}
}

func TestMinuteTimestamp(t *testing.T) {
	idx := buildTestIndex(t, 40)
	if got := idx.MinuteTimestamp(1); got != 65.0 {
		t.Fatalf("expected earliest entry start 65.0, got %v", got)
	}
	// Unpopulated minutes fall back to the minute boundary.
	if got := idx.MinuteTimestamp(3); got != 180.0 {
		t.Fatalf("expected fallback 180.0, got %v", got)
	}
}

func TestMinutesWithMinChars(t *testing.T) {
	idx := buildTestIndex(t, 40)
	valid := idx.MinutesWithMinChars()
	// Only minute 1 accumulates 40+ characters of cleaned text.
	if len(valid) != 1 || valid[0] != 1 {
		t.Fatalf("expected valid minutes [1], got %v", valid)
	}

	permissive := buildTestIndex(t, 10)
	if got := permissive.MinutesWithMinChars(); len(got) != 3 {
		t.Fatalf("expected 3 valid minutes at threshold 10, got %v", got)
	}
}

func TestSearchWindowClamping(t *testing.T) {
	idx := buildTestIndex(t, 40)
	start, end := idx.SearchWindow(1, 20)
	if start != 0 {
		t.Fatalf("window start must clamp to 0, got %d", start)
	}
	if end != 5 {
		t.Fatalf("window end must clamp to max populated minute 5, got %d", end)
	}
}

func TestCandidatesInWindowAscending(t *testing.T) {
	idx := buildTestIndex(t, 40)
	candidates := idx.CandidatesInWindow(2, 20)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 non-empty candidates, got %d", len(candidates))
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Minute <= candidates[i-1].Minute {
			t.Fatal("candidates must be in ascending minute order")
		}
	}
}

func TestComputeStats(t *testing.T) {
	idx := buildTestIndex(t, 40)
	stats := idx.ComputeStats()
	if stats.TotalEntries != 4 {
		t.Fatalf("expected 4 total entries, got %d", stats.TotalEntries)
	}
	if stats.TotalMinutes != 3 {
		t.Fatalf("expected 3 populated minutes, got %d", stats.TotalMinutes)
	}
	if stats.DurationSeconds != 333.0 {
		t.Fatalf("expected duration 333.0, got %v", stats.DurationSeconds)
	}
	if stats.ValidMinutes != 1 {
		t.Fatalf("expected 1 valid minute, got %d", stats.ValidMinutes)
	}
}

func TestLargeIndexWindowBounds(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "%d\n%s --> %s\nEntry number %d says a full sentence of dialogue\n\n",
			i+1, FormatTimestamp(float64(i)*60+5), FormatTimestamp(float64(i)*60+8), i+1)
	}
	idx := NewIndex(Parse(sb.String()), 40)
	start, end := idx.SearchWindow(60, 20)
	if start != 40 || end != 80 {
		t.Fatalf("expected window [40,80], got [%d,%d]", start, end)
	}
}
