package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const lockRetryDelay = 250 * time.Millisecond

// Service wraps the whisper.cpp CLI.
type Service struct {
	cfg        Config
	httpClient *http.Client
	runner     func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.runner = runner
}

// WithHTTPClient overrides the HTTP client used for model downloads.
func (s *Service) WithHTTPClient(client *http.Client) {
	s.httpClient = client
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Segment is one timed span of recognized speech.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Transcript is the result of transcribing one audio file. Segment timing is
// captured for callers that want it; the translation pipeline consumes only
// the full text.
type Transcript struct {
	Text     string
	Segments []Segment
}

// Transcribe runs the model on the given audio file, writing the CLI's JSON
// output under outputDir. The audio should be the mono 16kHz WAV produced by
// the extraction stage. The whole file is transcribed in one invocation.
func (s *Service) Transcribe(ctx context.Context, handle *ModelHandle, audioPath, outputDir string) (Transcript, error) {
	var result Transcript

	if handle == nil || strings.TrimSpace(handle.Path) == "" {
		return result, fmt.Errorf("transcribe: model handle required")
	}
	if strings.TrimSpace(audioPath) == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outPrefix := filepath.Join(outputDir, baseName)

	args := []string{
		"-m", handle.Path,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
		"-np",
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}

	return loadTranscript(outPrefix + ".json")
}

// opCtx applies the configured timeout to one CLI run or download.
func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.runner != nil {
		return s.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// transcriptFile mirrors the whisper.cpp JSON output layout.
type transcriptFile struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func loadTranscript(path string) (Transcript, error) {
	var result Transcript

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("transcribe: read output %s: %w", path, err)
	}
	var file transcriptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return result, fmt.Errorf("transcribe: parse output %s: %w", path, err)
	}

	var text strings.Builder
	result.Segments = make([]Segment, 0, len(file.Transcription))
	for _, seg := range file.Transcription {
		trimmed := strings.TrimSpace(seg.Text)
		if trimmed == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(trimmed)
		result.Segments = append(result.Segments, Segment{
			Start: time.Duration(seg.Offsets.From) * time.Millisecond,
			End:   time.Duration(seg.Offsets.To) * time.Millisecond,
			Text:  trimmed,
		})
	}
	result.Text = text.String()
	return result, nil
}
