// Package offset turns alignment matches into a time-correction function:
// offset extraction, statistical outlier rejection, the uniform-versus-
// interpolated decision, and application of the correction to subtitle
// entries.
package offset
