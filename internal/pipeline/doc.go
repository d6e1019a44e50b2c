// Package pipeline sequences the five translation stages: extract audio,
// transcribe, translate, synthesize, remux.
//
// The pipeline is single-flow and strictly sequential; each run owns one
// workspace scope which is released on every exit path. Stage failures wrap
// the cause with the stage name and abort the run immediately; there are no
// retries at any layer. The orchestrator is stateless across calls except for
// the shared, read-only-after-load transcription model handle.
package pipeline
