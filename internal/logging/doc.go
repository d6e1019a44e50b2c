// Package logging configures the application slog logger.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log collection. Helpers derive per-run and per-stage
// attributes from context annotations set by internal/services.
package logging
