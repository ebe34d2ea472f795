// Package audio plans sample positions on the media timeline and extracts
// speech-friendly audio clips with ffmpeg for transcription.
package audio
