package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWhisper()
	c.normalizeTranslate()
	c.normalizeTTS()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ModelCacheDir) == "" {
		c.Paths.ModelCacheDir = defaultModelCacheDir
	}
	if c.Paths.ModelCacheDir, err = expandPath(c.Paths.ModelCacheDir); err != nil {
		return fmt.Errorf("paths.model_cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	if c.Whisper.Binary == "" {
		c.Whisper.Binary = defaultWhisperBinary
	}
	c.Whisper.DownloadBaseURL = strings.TrimRight(strings.TrimSpace(c.Whisper.DownloadBaseURL), "/")
	if c.Whisper.DownloadBaseURL == "" {
		c.Whisper.DownloadBaseURL = defaultModelBaseURL
	}
	if c.Whisper.TimeoutSeconds <= 0 {
		c.Whisper.TimeoutSeconds = defaultWhisperTimeout
	}
}

func (c *Config) normalizeTranslate() {
	c.Translate.BaseURL = strings.TrimRight(strings.TrimSpace(c.Translate.BaseURL), "/")
	if c.Translate.BaseURL == "" {
		c.Translate.BaseURL = defaultTranslateURL
	}
	if c.Translate.TimeoutSeconds <= 0 {
		c.Translate.TimeoutSeconds = defaultTranslateTimeout
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.VoicesURL = strings.TrimSpace(c.TTS.VoicesURL)
	if c.TTS.VoicesURL == "" {
		c.TTS.VoicesURL = defaultVoicesURL
	}
	c.TTS.DefaultVoice = strings.TrimSpace(c.TTS.DefaultVoice)
	if c.TTS.DefaultVoice == "" {
		c.TTS.DefaultVoice = defaultVoice
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeout
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.VideoCodec = strings.TrimSpace(c.Media.VideoCodec)
	if c.Media.VideoCodec == "" {
		c.Media.VideoCodec = defaultVideoCodec
	}
	c.Media.AudioCodec = strings.TrimSpace(c.Media.AudioCodec)
	if c.Media.AudioCodec == "" {
		c.Media.AudioCodec = defaultAudioCodec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// ExpandPath resolves ~ and relative segments into an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("resolve home directory")
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
