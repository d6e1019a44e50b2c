// Package history persists a record of every translation run in SQLite.
//
// Only run metadata is stored (source, target language, voice, status,
// outcome); intermediate media artifacts never outlive their run's workspace
// scope. Statuses mirror the pipeline state machine and move forward only.
package history
