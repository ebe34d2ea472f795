// Package sampling is the adaptive controller: it grades the consistency of
// observed offsets and recommends the sample budget and similarity threshold
// for a retry attempt. It only recommends; the caller drives the retry loop.
package sampling
