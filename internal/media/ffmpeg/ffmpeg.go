package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the ffmpeg executable resolved from PATH.
const DefaultBinary = "ffmpeg"

// CommandRunner executes an external command, returning combined output on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Engine provides audio extraction and remuxing via ffmpeg.
type Engine struct {
	binary string
	runner CommandRunner
}

// NewEngine creates an ffmpeg engine using the given binary name.
func NewEngine(binary string) *Engine {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Engine{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Engine) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

func (e *Engine) run(ctx context.Context, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, e.binary, args...)
	}
	cmd := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", e.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ExtractAudio demuxes the first audio track of source into a mono 16kHz
// pcm_s16le WAV file suitable for transcription. ffmpeg fails when the
// container has no audio track, which the caller maps to a media read error.
func (e *Engine) ExtractAudio(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("extract audio: source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("extract audio: destination path required")
	}
	args := buildExtractArgs(source, dest)
	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	return nil
}

// Remux produces the output container from the source's video stream and the
// replacement audio stream. The original audio is discarded entirely, and the
// durations of the two streams are not reconciled.
func (e *Engine) Remux(ctx context.Context, videoPath, audioPath, outputPath, videoCodec, audioCodec string) error {
	if strings.TrimSpace(videoPath) == "" || strings.TrimSpace(audioPath) == "" {
		return fmt.Errorf("remux: video and audio paths required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return fmt.Errorf("remux: output path required")
	}
	args := buildRemuxArgs(videoPath, audioPath, outputPath, videoCodec, audioCodec)
	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg remux: %w", err)
	}
	return nil
}
