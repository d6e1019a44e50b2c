package config

import (
	"fmt"
	"strings"
)

var knownWhisperModels = map[string]struct{}{
	"tiny": {}, "tiny.en": {},
	"base": {}, "base.en": {},
	"small": {}, "small.en": {},
	"medium": {}, "medium.en": {},
	"large-v2": {}, "large-v3": {}, "large-v3-turbo": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if _, ok := knownWhisperModels[c.Whisper.Model]; !ok {
		return fmt.Errorf("whisper.model: unknown model %q", c.Whisper.Model)
	}
	return nil
}

func (c *Config) validateTTS() error {
	if !strings.Contains(c.TTS.DefaultVoice, "-") {
		return fmt.Errorf("tts.default_voice: %q does not look like a voice short name", c.TTS.DefaultVoice)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.AudioCodec == "copy" {
		return fmt.Errorf("media.audio_codec: synthesized audio must be encoded, not copied")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
