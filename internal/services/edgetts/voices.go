package edgetts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Voice is one entry of the synthesis voice catalog.
type Voice struct {
	ShortName    string `json:"ShortName"`
	Locale       string `json:"Locale"`
	Gender       string `json:"Gender"`
	FriendlyName string `json:"FriendlyName"`
}

// ListVoices fetches the full voice catalog. Order is as returned by the
// service; callers that need determinism sort the result themselves.
func (s *Service) ListVoices(ctx context.Context) ([]Voice, error) {
	endpoint := strings.TrimSpace(s.cfg.VoicesURL)
	if endpoint == "" {
		endpoint = DefaultVoicesURL
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("list voices: parse url: %w", err)
	}
	query := parsed.Query()
	if query.Get("trustedclienttoken") == "" {
		query.Set("trustedclienttoken", trustedClientToken)
		parsed.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("list voices: request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list voices: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list voices: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var voices []Voice
	if err := json.Unmarshal(body, &voices); err != nil {
		return nil, fmt.Errorf("list voices: decode response: %w", err)
	}
	return voices, nil
}
