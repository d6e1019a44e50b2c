package edgetts

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// UVXCommand runs Python CLI tools without a managed install.
	UVXCommand = "uvx"

	// DefaultVoicesURL is the consumer voice catalog endpoint.
	DefaultVoicesURL = "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/voices/list"

	// trustedClientToken is the public token the Edge browser sends to the
	// read-aloud service.
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"

	defaultHTTPTimeout = 30 * time.Second
)

// Config describes the synthesis service.
type Config struct {
	// VoicesURL overrides the voice catalog endpoint (tests).
	VoicesURL string
	// Timeout bounds one synthesis run and the voice catalog fetch. Zero
	// falls back to a conservative default for the catalog and leaves
	// synthesis bounded only by the caller's context.
	Timeout time.Duration
}

// Service provides voice catalog access and text-to-speech synthesis.
type Service struct {
	cfg        Config
	httpClient *http.Client
	runner     func(ctx context.Context, name string, args ...string) error
}

// NewService creates an Edge TTS service with the given configuration.
func NewService(cfg Config) *Service {
	catalogTimeout := cfg.Timeout
	if catalogTimeout <= 0 {
		catalogTimeout = defaultHTTPTimeout
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: catalogTimeout},
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.runner = runner
}

// WithHTTPClient overrides the HTTP client used for the voice catalog.
func (s *Service) WithHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

// Synthesize renders text as speech with the given voice, writing an MP3 to
// outputPath. The text is handed to the CLI by file; the file is written next
// to the output so it lives inside the run's workspace.
func (s *Service) Synthesize(ctx context.Context, text, voiceID, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("synthesize: text required")
	}
	if strings.TrimSpace(voiceID) == "" {
		return fmt.Errorf("synthesize: voice required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return fmt.Errorf("synthesize: output path required")
	}

	textPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".txt"
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("synthesize: write text file: %w", err)
	}

	args := []string{
		"edge-tts",
		"--voice", voiceID,
		"--file", textPath,
		"--write-media", outputPath,
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if err := s.run(ctx, UVXCommand, args...); err != nil {
		return fmt.Errorf("edge-tts: %w", err)
	}
	return nil
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
