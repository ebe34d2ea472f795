package align

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"subshift/internal/audio"
	"subshift/internal/subtitles"
)

func indexFromMinuteTexts(t *testing.T, texts map[int]string) *subtitles.Index {
	t.Helper()
	var sb strings.Builder
	index := 1
	for minute := 0; minute < 200; minute++ {
		text, ok := texts[minute]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			index,
			subtitles.FormatTimestamp(float64(minute)*60+2),
			subtitles.FormatTimestamp(float64(minute)*60+5),
			text,
		)
		index++
	}
	return subtitles.NewIndex(subtitles.Parse(sb.String()), 40)
}

func TestFindBestMatchLocatesCorrectMinute(t *testing.T) {
	idx := indexFromMinuteTexts(t, map[int]string{
		8:  "completely unrelated chatter about the weather in the village",
		10: "we have to get to the bridge before the army arrives at dawn",
		12: "another stretch of dialogue that shares nothing with the sample",
	})
	engine := NewEngine(0.65, 20, 40, 4, nil)

	sample := audio.Sample{
		Index:          0,
		StartTimestamp: 600,
		Transcription:  "we have to get to the bridge before the army arrives at dawn",
	}
	match := engine.FindBestMatch(sample, idx)
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.SubtitleMinute != 10 {
		t.Fatalf("expected minute 10, got %d", match.SubtitleMinute)
	}
	if !match.IsMatch {
		t.Fatalf("expected passing match, similarity %v", match.Similarity)
	}
	if match.SubtitleTimestamp != 602 {
		t.Fatalf("expected subtitle timestamp 602 (first entry in minute), got %v", match.SubtitleTimestamp)
	}
	if match.Offset() != 2 {
		t.Fatalf("expected offset 2, got %v", match.Offset())
	}
}

func TestFindBestMatchNoTranscription(t *testing.T) {
	idx := indexFromMinuteTexts(t, map[int]string{
		5: "some dialogue long enough to clear the candidate threshold easily",
	})
	engine := NewEngine(0.65, 20, 40, 4, nil)
	if match := engine.FindBestMatch(audio.Sample{Index: 1, StartTimestamp: 300}, idx); match != nil {
		t.Fatal("expected nil match for missing transcription")
	}
}

func TestFindBestMatchScoresShortTranscription(t *testing.T) {
	// Whisper often returns only a fragment of a sample's speech. The length
	// filter guards subtitle candidates, not the transcription itself, so a
	// fragment well under minChars must still be matched against full entries.
	idx := indexFromMinuteTexts(t, map[int]string{
		5: "hello there my friend how are you doing today sir",
	})
	engine := NewEngine(0.3, 5, 40, 1, nil)

	sample := audio.Sample{
		Index:          0,
		StartTimestamp: 300,
		Transcription:  "hello there my friend",
	}
	match := engine.FindBestMatch(sample, idx)
	if match == nil {
		t.Fatal("short transcription must still be scored against candidates")
	}
	if match.SubtitleMinute != 5 {
		t.Fatalf("expected minute 5, got %d", match.SubtitleMinute)
	}
	if !match.IsMatch {
		t.Fatalf("expected fragment to clear the 0.3 threshold, similarity %v", match.Similarity)
	}
}

func TestFindBestMatchReturnsNearMiss(t *testing.T) {
	idx := indexFromMinuteTexts(t, map[int]string{
		5: "a quiet conversation about gardens and the coming harvest season",
	})
	engine := NewEngine(0.65, 20, 40, 4, nil)
	sample := audio.Sample{
		Index:          0,
		StartTimestamp: 300,
		Transcription:  "numbers stations broadcast cryptic sequences across shortwave radio",
	}
	match := engine.FindBestMatch(sample, idx)
	if match == nil {
		t.Fatal("a non-passing best match must still be returned")
	}
	if match.IsMatch {
		t.Fatalf("expected near-miss to fail the threshold, similarity %v", match.Similarity)
	}
}

func TestFindBestMatchTieBreaksToLowestMinute(t *testing.T) {
	text := "the very same line of dialogue repeated across two distant minutes"
	idx := indexFromMinuteTexts(t, map[int]string{4: text, 6: text})
	engine := NewEngine(0.65, 20, 40, 4, nil)

	// Sample sits exactly between the two candidates so the timing bonus is
	// identical; the earlier minute must win.
	sample := audio.Sample{Index: 0, StartTimestamp: 300, Transcription: text}
	match := engine.FindBestMatch(sample, idx)
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.SubtitleMinute != 4 {
		t.Fatalf("tie must resolve to lowest minute, got %d", match.SubtitleMinute)
	}
}

func TestAlignSamplesOrderedByIndex(t *testing.T) {
	idx := indexFromMinuteTexts(t, map[int]string{
		5:  "first marker dialogue that only appears around the five minute mark",
		15: "second marker dialogue that only appears around the fifteen minute mark",
		25: "third marker dialogue that only appears around the twenty five minute mark",
	})
	engine := NewEngine(0.65, 20, 40, 2, nil)

	samples := []audio.Sample{
		{Index: 2, StartTimestamp: 1500, Transcription: "third marker dialogue that only appears around the twenty five minute mark"},
		{Index: 0, StartTimestamp: 300, Transcription: "first marker dialogue that only appears around the five minute mark"},
		{Index: 1, StartTimestamp: 900, Transcription: "second marker dialogue that only appears around the fifteen minute mark"},
	}
	matches, err := engine.AlignSamples(context.Background(), samples, idx)
	if err != nil {
		t.Fatalf("AlignSamples: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].SampleIndex <= matches[i-1].SampleIndex {
			t.Fatal("matches must be ordered by sample index")
		}
	}
}

func TestAlignSamplesSkipsFailedSamples(t *testing.T) {
	idx := indexFromMinuteTexts(t, map[int]string{
		5: "dialogue present in the subtitle file around the five minute mark",
	})
	engine := NewEngine(0.65, 20, 40, 4, nil)
	samples := []audio.Sample{
		{Index: 0, StartTimestamp: 300, Transcription: "dialogue present in the subtitle file around the five minute mark"},
		{Index: 1, StartTimestamp: 900},
	}
	matches, err := engine.AlignSamples(context.Background(), samples, idx)
	if err != nil {
		t.Fatalf("AlignSamples: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected untranscribed sample to be skipped, got %d matches", len(matches))
	}
}

func TestSuccessfulAndStats(t *testing.T) {
	matches := []Match{
		{SampleIndex: 0, Similarity: 0.9, IsMatch: true, Distance: 4},
		{SampleIndex: 1, Similarity: 0.3, IsMatch: false, Distance: 40},
		{SampleIndex: 2, Similarity: 0.8, IsMatch: true, Distance: 8},
	}
	if got := Successful(matches); len(got) != 2 {
		t.Fatalf("expected 2 successful matches, got %d", len(got))
	}

	engine := NewEngine(0.65, 20, 40, 4, nil)
	stats := engine.ComputeStats(matches)
	if stats.SuccessfulMatches != 2 || stats.TotalMatches != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.SuccessRate < 0.66 || stats.SuccessRate > 0.67 {
		t.Fatalf("expected success rate ~2/3, got %v", stats.SuccessRate)
	}
}
