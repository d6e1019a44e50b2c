// Package whisper adapts the whisper.cpp CLI as the pipeline's
// transcription engine.
//
// Model files are fetched once into a local cache (a cross-process file lock
// keeps concurrent runs from downloading the same model twice) and loading is
// an explicit caller step: the pipeline refuses to start transcription
// without a loaded model handle so the potentially slow network fetch stays
// visible and controllable. Tests can swap in a command runner to avoid
// executing the CLI.
package whisper
