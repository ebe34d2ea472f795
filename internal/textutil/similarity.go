package textutil

import (
	"math"
	"regexp"

	"github.com/antzucaro/matchr"
)

// NoDistance marks a comparison where no edit distance could be computed,
// such as when one of the texts is empty.
const NoDistance = -1

var sentenceSplitRE = regexp.MustCompile(`[.!?]+`)

// SentenceCount returns the number of segments produced by splitting text on
// sentence-terminating punctuation runs. Trailing punctuation yields an empty
// final segment which still counts, matching how segment counts are compared.
func SentenceCount(text string) int {
	return len(sentenceSplitRE.Split(text, -1))
}

// musicIndicators and dialogueIndicators classify a text's content type.
// Subtitle music cues and transcripts of sung passages tend to share the
// former vocabulary; narrated dialogue shares the latter.
var (
	musicIndicators    = wordSet("music", "song", "singing", "melody", "tune", "beat", "rhythm", "instrumental")
	dialogueIndicators = wordSet("said", "told", "asked", "replied", "answered", "explained", "whispered", "shouted", "called")
)

const indicatorFraction = 0.1

// Scorer computes weighted similarity between a transcript and subtitle text.
// The base score comes from Levenshtein distance; four additive bonuses pull
// marginal matches over the threshold when secondary evidence converges. Each
// bonus degrades to exactly zero rather than going negative so ambiguous
// content is never penalized.
type Scorer struct {
	// SearchWindowMinutes bounds the timing-proximity bonus decay.
	SearchWindowMinutes int
}

// LevenshteinSimilarity returns the raw edit distance between two strings and
// a similarity score of 1 - distance/maxLen. Either string being empty yields
// (NoDistance, 0).
func LevenshteinSimilarity(a, b string) (int, float64) {
	if a == "" || b == "" {
		return NoDistance, 0.0
	}
	distance := matchr.Levenshtein(a, b)
	maxLength := max(len(a), len(b))
	return distance, 1.0 - float64(distance)/float64(maxLength)
}

// WeightedSimilarity scores a transcript against a candidate subtitle minute.
// On top of the Levenshtein base it awards up to 0.15 for word overlap after
// stopword removal, up to 0.05 for similar sentence structure, a flat 0.08
// when both texts classify as the same content type, and up to 0.10 for
// timing proximity between the audio timestamp and the candidate minute. The
// result is clamped to 1.0.
func (s Scorer) WeightedSimilarity(audioText, subtitleText string, audioTimestamp float64, subtitleMinute int) (int, float64) {
	if audioText == "" || subtitleText == "" {
		return NoDistance, 0.0
	}

	distance, base := LevenshteinSimilarity(audioText, subtitleText)

	meaningfulAudio := MeaningfulWords(audioText)
	meaningfulSubtitle := MeaningfulWords(subtitleText)

	wordBonus := 0.0
	if len(meaningfulAudio) > 0 && len(meaningfulSubtitle) > 0 {
		shared := intersectionCount(meaningfulAudio, meaningfulSubtitle)
		union := len(meaningfulAudio) + len(meaningfulSubtitle) - shared
		wordBonus = float64(shared) / float64(union) * 0.15
	}

	audioSentences := SentenceCount(audioText)
	subtitleSentences := SentenceCount(subtitleText)
	structureBonus := 0.0
	if longest := max(audioSentences, subtitleSentences); longest > 0 {
		structureSimilarity := 1.0 - math.Abs(float64(audioSentences-subtitleSentences))/float64(longest)
		structureBonus = structureSimilarity * 0.05
	}

	contentBonus := 0.0
	if sameContentType(meaningfulAudio, meaningfulSubtitle) {
		contentBonus = 0.08
	}

	timingBonus := 0.0
	if maxDiff := float64(s.SearchWindowMinutes) * 60; maxDiff > 0 {
		timeDiff := math.Abs(audioTimestamp - float64(subtitleMinute)*60)
		timingBonus = math.Max(0, (1.0-timeDiff/maxDiff)*0.10)
	}

	weighted := math.Min(1.0, base+wordBonus+structureBonus+contentBonus+timingBonus)
	return distance, weighted
}

func sameContentType(audioWords, subtitleWords map[string]struct{}) bool {
	return (indicatorScore(audioWords, musicIndicators) > indicatorFraction &&
		indicatorScore(subtitleWords, musicIndicators) > indicatorFraction) ||
		(indicatorScore(audioWords, dialogueIndicators) > indicatorFraction &&
			indicatorScore(subtitleWords, dialogueIndicators) > indicatorFraction)
}

func indicatorScore(words, indicators map[string]struct{}) float64 {
	return float64(intersectionCount(words, indicators)) / float64(max(len(words), 1))
}
