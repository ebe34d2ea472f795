// Package logging builds slog loggers with the repository's console and JSON
// handlers and exposes typed attribute helpers plus standardized field names.
package logging
