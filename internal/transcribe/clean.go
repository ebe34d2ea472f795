package transcribe

import (
	"regexp"
	"strings"
)

var (
	transcriptTagRE     = regexp.MustCompile(`<[^>]+>`)
	transcriptBracketRE = regexp.MustCompile(`\[[^\]]+\]`)
	transcriptParenRE   = regexp.MustCompile(`\([^)]+\)`)
	transcriptLyricsRE  = regexp.MustCompile(`♪[^♪]*♪`)
	transcriptSymbolRE  = regexp.MustCompile(`[♪♫★►▼]`)
)

// CleanTranscript strips annotations a transcription model sometimes emits
// around speech: markup tags, bracketed or parenthesized sound descriptions,
// and music lyric markers. Whitespace is collapsed to single spaces.
func CleanTranscript(text string) string {
	if text == "" {
		return ""
	}
	text = transcriptTagRE.ReplaceAllString(text, "")
	text = transcriptBracketRE.ReplaceAllString(text, "")
	text = transcriptParenRE.ReplaceAllString(text, "")
	text = transcriptLyricsRE.ReplaceAllString(text, "")
	text = transcriptSymbolRE.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
