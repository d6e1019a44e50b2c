// Package workspace manages per-run temporary directories.
//
// Each translation run owns exactly one Scope. Every intermediate artifact
// (extracted audio, synthesized audio, remuxed video) is written under the
// scope directory, and the scope is closed on every exit path so no run
// leaks temporary media files. CleanStale reclaims directories abandoned by
// crashed processes.
package workspace
