// Package services provides the shared error taxonomy used across the
// correction pipeline. Errors are tagged with sentinel markers so callers can
// classify failures (retry, surface to the user, or abort) without string
// matching.
package services
