// Package textutil provides text normalization and the weighted similarity
// scorer used to align transcribed audio snippets with subtitle text.
package textutil
