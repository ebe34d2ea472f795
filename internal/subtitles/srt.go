package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"subshift/internal/services"
)

// Entry is a single subtitle with timing in seconds and both the raw and
// cleaned text. Timestamps are rewritten during correction; text never is.
type Entry struct {
	Index       int
	Start       float64
	End         float64
	Text        string
	CleanedText string
}

// ValidatePath checks that a subtitle path exists and is an SRT file. Other
// subtitle formats (.ass, .sub, .idx, .sup, .stl, .scc) are rejected at the
// boundary rather than mis-parsed.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "subtitles", "validate", "subtitle file not found", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "subtitles", "validate", fmt.Sprintf("%s is a directory", path), nil)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".srt" {
		return services.Wrap(services.ErrValidation, "subtitles", "validate",
			fmt.Sprintf("only .srt files are supported, got %s", ext), nil)
	}
	return nil
}

// ParseFile reads an SRT file into entries. Malformed blocks are skipped
// individually; a file with no parseable blocks yields an empty slice.
func ParseFile(path string) ([]Entry, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse splits SRT content into entries. Blocks missing an index, timing
// line, or text are dropped rather than aborting the whole file.
func Parse(content string) []Entry {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	blocks := strings.Split(content, "\n\n")
	var entries []Entry

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}

		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			continue
		}

		if !strings.Contains(lines[1], "-->") {
			continue
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			continue
		}
		start, err := ParseTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := ParseTimestamp(parts[1])
		if err != nil {
			continue
		}

		text := strings.Join(lines[2:], "\n")
		entries = append(entries, Entry{
			Index:       index,
			Start:       start,
			End:         end,
			Text:        text,
			CleanedText: CleanText(text),
		})
	}

	return entries
}

// ParseTimestamp converts an SRT timestamp (HH:MM:SS,mmm) to seconds. A
// period before the milliseconds is tolerated and normalized to a comma.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatTimestamp renders seconds as an SRT timestamp. Negative values clamp
// to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1000
	millis := msTotal % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Serialize renders entries back into SRT content. Entry ordering, indices,
// and text are preserved exactly; only the timing line reflects any
// timestamp rewrites.
func Serialize(entries []Entry) string {
	var sb strings.Builder
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d\n", entry.Index))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", FormatTimestamp(entry.Start), FormatTimestamp(entry.End)))
		sb.WriteString(entry.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteFile serializes entries to path.
func WriteFile(path string, entries []Entry) error {
	if err := os.WriteFile(path, []byte(Serialize(entries)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}
