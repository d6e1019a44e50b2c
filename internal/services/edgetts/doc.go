// Package edgetts adapts the Microsoft Edge read-aloud service as the
// pipeline's speech synthesis engine.
//
// The voice catalog is fetched from the consumer voice list endpoint;
// synthesis runs the edge-tts CLI through uvx with the text passed by file so
// long transcripts never hit argv limits. Tests can swap in a command runner
// and point the catalog at a mock server.
package edgetts
