// Package ffmpeg wraps the ffmpeg CLI for the two media operations the
// pipeline needs: demuxing a video's audio track to a transcription-ready
// WAV file, and remuxing the original video stream with newly synthesized
// audio. Tests can swap in a command runner to avoid executing ffmpeg.
package ffmpeg
