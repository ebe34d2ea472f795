// Command subshift corrects timing drift in SRT subtitle files by sampling
// the media's audio, transcribing it, and aligning the transcripts against
// the subtitle timeline.
package main
