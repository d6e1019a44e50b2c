package whisper

import "time"

// DefaultBinary is the whisper.cpp CLI executable resolved from PATH.
const DefaultBinary = "whisper-cli"

// DefaultModel balances speed and quality for spoken-video transcription.
const DefaultModel = "base"

// DefaultDownloadBaseURL hosts the converted ggml model files.
const DefaultDownloadBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Config describes the transcription service.
type Config struct {
	// Model is the whisper.cpp model name (tiny, base, small, ...).
	Model string
	// Binary is the whisper.cpp CLI executable.
	Binary string
	// CacheDir is where downloaded model files are stored.
	CacheDir string
	// DownloadBaseURL overrides the model download host (tests).
	DownloadBaseURL string
	// Timeout bounds a single transcription run or model download. Zero
	// means no limit beyond the caller's context.
	Timeout time.Duration
}

// modelFiles maps model names to their ggml file names in the
// ggerganov/whisper.cpp Hugging Face repository.
var modelFiles = map[string]string{
	"tiny":           "ggml-tiny.bin",
	"tiny.en":        "ggml-tiny.en.bin",
	"base":           "ggml-base.bin",
	"base.en":        "ggml-base.en.bin",
	"small":          "ggml-small.bin",
	"small.en":       "ggml-small.en.bin",
	"medium":         "ggml-medium.bin",
	"medium.en":      "ggml-medium.en.bin",
	"large-v2":       "ggml-large-v2.bin",
	"large-v3":       "ggml-large-v3.bin",
	"large-v3-turbo": "ggml-large-v3-turbo.bin",
}
