package subtitles

import (
	"regexp"

	"subshift/internal/textutil"
)

var (
	htmlTagRE      = regexp.MustCompile(`<[^>]+>`)
	bracketedRE    = regexp.MustCompile(`\[[^\]]+\]`)
	parentheticRE  = regexp.MustCompile(`\([^)]+\)`)
	speakerLabelRE = regexp.MustCompile(`^[A-Z][A-Z\s]*:`)
	symbolRE       = regexp.MustCompile(`[♪♫★►▼→←↑↓]`)
	multiDotRE     = regexp.MustCompile(`\.{2,}`)
	multiDashRE    = regexp.MustCompile(`-{2,}`)
	whitespaceRE   = regexp.MustCompile(`\s+`)
)

// CleanText strips markup and annotations from subtitle text to produce the
// comparison form: HTML/WebVTT tags, bracketed and parenthesized sound
// descriptions, leading speaker labels, music symbols, and repeated
// punctuation are removed, whitespace is collapsed, and the result is
// normalized to lowercase.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = htmlTagRE.ReplaceAllString(text, "")
	text = bracketedRE.ReplaceAllString(text, "")
	text = parentheticRE.ReplaceAllString(text, "")
	text = speakerLabelRE.ReplaceAllString(text, "")
	text = symbolRE.ReplaceAllString(text, "")
	text = multiDotRE.ReplaceAllString(text, ".")
	text = multiDashRE.ReplaceAllString(text, "-")
	text = whitespaceRE.ReplaceAllString(text, " ")
	return textutil.Normalize(text)
}
