// Package syncer drives a full synchronization run: plan and extract audio
// samples, transcribe them, align the transcripts against the subtitle
// timeline, derive a time correction, and rewrite the subtitle file. Failed
// attempts feed the adaptive controller, which retunes the sample count and
// similarity threshold before the next try.
package syncer
