// Package config loads, normalizes, and validates the overdub configuration.
//
// Configuration sections by subsystem:
//   - Paths: staging, log, and model cache directories
//   - Whisper: transcription model and binary settings
//   - Translate: translation endpoint settings
//   - TTS: voice catalog endpoint and synthesis settings
//   - Media: ffmpeg binary and output codecs
//   - Logging: log format and level
package config
