package subtitles

import (
	"context"
	"regexp"
	"strings"
)

// SDHClassifier decides whether a subtitle text chunk is a sound description
// (SDH) rather than spoken dialogue. Implementations may consult a remote
// model; errors fall back to the local pattern heuristic.
type SDHClassifier interface {
	IsSoundDescription(ctx context.Context, text string) (bool, error)
}

// sdhPatterns match the common hearing-impaired annotations: bracketed and
// parenthesized effects, music lyric markers, starred effects, angle-bracket
// cues, speaker labels, and effect keywords.
var sdhPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`\(.*?\)`),
	regexp.MustCompile(`♪.*?♪`),
	regexp.MustCompile(`\*.*?\*`),
	regexp.MustCompile(`<.*?>`),
	regexp.MustCompile(`^[A-Z\s]+:`),
	regexp.MustCompile(`(?i)\b(MUSIC|SOUND|SFX|EFFECT)S?\b`),
}

var (
	sdhMusicKeywords = []string{"music", "song", "melody", "tune", "playing", "singing"}
	sdhSoundKeywords = []string{"sound", "noise", "effect", "audio", "sfx"}
)

// StripSDHPatterns removes obvious sound-description markup from text and
// collapses the remaining whitespace.
func StripSDHPatterns(text string) string {
	for _, pattern := range sdhPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	return strings.Join(strings.Fields(text), " ")
}

// LikelySDH reports whether text looks like a sound description rather than
// dialogue. Very short chunks and anything carrying music or effect
// vocabulary count as SDH.
func LikelySDH(text string) bool {
	if len(strings.TrimSpace(text)) < 3 {
		return true
	}
	for _, pattern := range sdhPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	lower := strings.ToLower(text)
	for _, keyword := range append(append([]string{}, sdhMusicKeywords...), sdhSoundKeywords...) {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RemoveSDH filters sound-description entries out of a subtitle sequence and
// renumbers the survivors sequentially. Multi-line text is flattened to a
// single line with markup stripped. A nil classifier uses the pattern
// heuristic alone.
func RemoveSDH(ctx context.Context, entries []Entry, classifier SDHClassifier) []Entry {
	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		fullText := strings.TrimSpace(strings.ReplaceAll(entry.Text, "\n", " "))
		if fullText == "" {
			continue
		}

		cleaned := StripSDHPatterns(fullText)
		if len(cleaned) < 3 {
			continue
		}

		if classifier != nil && cleaned != fullText {
			isSDH, err := classifier.IsSoundDescription(ctx, cleaned)
			if err != nil {
				isSDH = LikelySDH(cleaned)
			}
			if isSDH {
				continue
			}
		} else if classifier == nil && LikelySDH(cleaned) {
			continue
		}

		entry.Index = len(kept) + 1
		entry.Text = cleaned
		entry.CleanedText = CleanText(cleaned)
		kept = append(kept, entry)
	}
	return kept
}
