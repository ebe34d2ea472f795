// Package align searches subtitle minute buckets for the best match to each
// transcribed audio sample. A bounded worker pool scores samples
// independently; results are returned in sample order.
package align
