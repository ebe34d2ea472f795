// Package subtitles parses, cleans, indexes, and writes SRT subtitle files.
// Entries are grouped into one-minute buckets whose concatenated cleaned text
// is the unit of comparison for transcript alignment.
package subtitles
