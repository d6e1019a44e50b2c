// Package services provides shared infrastructure for external service
// adapters: the pipeline error taxonomy with sentinel markers, and context
// annotation helpers consumed by structured logging.
package services
