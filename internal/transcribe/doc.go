// Package transcribe converts extracted audio clips into text through an
// OpenAI-compatible transcription API, with a SQLite-backed transcript cache
// so repeated runs over the same media do not pay for the same minutes twice.
package transcribe
