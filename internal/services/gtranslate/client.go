package gtranslate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://translate.googleapis.com"
	translatePath      = "/translate_a/single"
	defaultHTTPTimeout = 60 * time.Second

	// SourceAuto lets the backend detect the source language.
	SourceAuto = "auto"
)

// Client wraps the translate_a/single endpoint used by the web client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the translation client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a translation client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Result carries the translated text and the detected source language.
type Result struct {
	Text           string
	DetectedSource string
}

// Translate converts text into the target language. An empty source means
// auto-detection. The text is sent as one block; the endpoint splits it into
// sentence chunks which are re-joined in order.
func (c *Client) Translate(ctx context.Context, text, source, target string) (Result, error) {
	var empty Result
	if strings.TrimSpace(text) == "" {
		return empty, errors.New("translate: text required")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return empty, errors.New("translate: target language required")
	}
	if strings.TrimSpace(source) == "" {
		source = SourceAuto
	}

	query := url.Values{
		"client": {"gtx"},
		"sl":     {source},
		"tl":     {target},
		"dt":     {"t"},
	}
	endpoint := c.baseURL + translatePath + "?" + query.Encode()

	form := url.Values{"q": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return empty, fmt.Errorf("translate: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("translate: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("translate: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("translate: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseResponse(body)
}

// parseResponse unpacks the endpoint's nested-array payload:
// [[["chunk translated","chunk source",...],...],null,"detected",...]
func parseResponse(body []byte) (Result, error) {
	var empty Result
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return empty, fmt.Errorf("translate: decode response: %w", err)
	}
	if len(payload) == 0 {
		return empty, errors.New("translate: empty response")
	}

	chunks, ok := payload[0].([]any)
	if !ok {
		return empty, errors.New("translate: unexpected response shape")
	}
	var text strings.Builder
	for _, raw := range chunks {
		chunk, ok := raw.([]any)
		if !ok || len(chunk) == 0 {
			continue
		}
		part, ok := chunk[0].(string)
		if !ok {
			continue
		}
		text.WriteString(part)
	}
	if text.Len() == 0 {
		return empty, errors.New("translate: no translated text in response")
	}

	result := Result{Text: text.String()}
	if len(payload) > 2 {
		if detected, ok := payload[2].(string); ok {
			result.DetectedSource = detected
		}
	}
	return result, nil
}
