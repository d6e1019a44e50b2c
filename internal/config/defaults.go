package config

const (
	defaultStagingDir       = "~/.local/share/overdub/staging"
	defaultLogDir           = "~/.local/share/overdub/logs"
	defaultModelCacheDir    = "~/.cache/overdub/models"
	defaultHistoryDB        = "~/.local/share/overdub/history.db"
	defaultWhisperModel     = "base"
	defaultWhisperBinary    = "whisper-cli"
	defaultModelBaseURL     = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
	defaultWhisperTimeout   = 1800
	defaultTranslateURL     = "https://translate.googleapis.com"
	defaultTranslateTimeout = 60
	defaultVoicesURL        = "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/voices/list"
	defaultVoice            = "en-US-AriaNeural"
	defaultTTSTimeout       = 600
	defaultFFmpegBinary     = "ffmpeg"
	defaultVideoCodec       = "copy"
	defaultAudioCodec       = "aac"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:    defaultStagingDir,
			LogDir:        defaultLogDir,
			ModelCacheDir: defaultModelCacheDir,
			HistoryDB:     defaultHistoryDB,
		},
		Whisper: Whisper{
			Model:           defaultWhisperModel,
			Binary:          defaultWhisperBinary,
			DownloadBaseURL: defaultModelBaseURL,
			TimeoutSeconds:  defaultWhisperTimeout,
		},
		Translate: Translate{
			BaseURL:        defaultTranslateURL,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		TTS: TTS{
			VoicesURL:      defaultVoicesURL,
			DefaultVoice:   defaultVoice,
			TimeoutSeconds: defaultTTSTimeout,
		},
		Media: Media{
			FFmpegBinary: defaultFFmpegBinary,
			VideoCodec:   defaultVideoCodec,
			AudioCodec:   defaultAudioCodec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
