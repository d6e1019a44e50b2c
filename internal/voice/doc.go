// Package voice resolves a target-language code to a synthesis voice.
//
// Resolution tries a static table of known-good voices first, then falls back
// to searching the live voice catalog, and finally to a fixed default voice.
// The default-voice path is a degraded success, not a failure: the run
// continues but speaks the wrong language, and callers surface a warning.
package voice
