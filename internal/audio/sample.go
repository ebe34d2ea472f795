package audio

// Sample is one extracted audio clip on the reference timeline. Transcription
// is filled in later; an empty transcription marks an upstream failure and
// downstream consumers skip the sample rather than erroring.
type Sample struct {
	Index          int
	StartTimestamp float64
	FilePath       string
	Transcription  string
}

// HasTranscription reports whether the sample carries usable transcript text.
func (s Sample) HasTranscription() bool {
	return s.Transcription != ""
}
