package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text and folds diacritics so transcripts and subtitle
// text compare on equal footing regardless of accent marks.
func Normalize(text string) string {
	folded, _, err := transform.String(diacriticStripper, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// stopwords are common words excluded from word-overlap comparison because
// they match between almost any pair of English texts.
var stopwords = wordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "is", "are", "was", "were", "be", "been", "have",
	"has", "had", "do", "does", "did", "will", "would", "could", "should",
	"may", "might", "can", "i", "you", "he", "she", "it", "we", "they",
	"this", "that", "these", "those",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// MeaningfulWords returns the lowercase word set of text with stopwords removed.
func MeaningfulWords(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	words := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, stop := stopwords[field]; stop {
			continue
		}
		words[field] = struct{}{}
	}
	return words
}

func intersectionCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for word := range a {
		if _, ok := b[word]; ok {
			count++
		}
	}
	return count
}
