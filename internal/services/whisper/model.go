package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ModelHandle identifies a model file that is present on disk and ready for
// inference. Treat it as read-only after load; concurrent runs may share one
// handle.
type ModelHandle struct {
	Name string
	Path string
}

// LoadModel ensures the configured model file exists in the cache directory,
// downloading it when missing. It is idempotent: a model that is already
// cached loads without network access. Concurrent loads of the same model are
// serialized with a file lock so only one process performs the fetch.
func (s *Service) LoadModel(ctx context.Context) (*ModelHandle, error) {
	name := strings.TrimSpace(s.cfg.Model)
	if name == "" {
		name = DefaultModel
	}
	fileName, ok := modelFiles[name]
	if !ok {
		return nil, fmt.Errorf("load model: unknown model %q", name)
	}
	cacheDir := strings.TrimSpace(s.cfg.CacheDir)
	if cacheDir == "" {
		return nil, fmt.Errorf("load model: cache directory required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("load model: ensure cache dir: %w", err)
	}

	modelPath := filepath.Join(cacheDir, fileName)
	if _, err := os.Stat(modelPath); err == nil {
		return &ModelHandle{Name: name, Path: modelPath}, nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	lock := flock.New(modelPath + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("load model: acquire download lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("load model: download lock unavailable")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// Another process may have finished the download while we waited.
	if _, err := os.Stat(modelPath); err == nil {
		return &ModelHandle{Name: name, Path: modelPath}, nil
	}

	if err := s.downloadModel(ctx, fileName, modelPath); err != nil {
		return nil, err
	}
	return &ModelHandle{Name: name, Path: modelPath}, nil
}

func (s *Service) downloadModel(ctx context.Context, fileName, dest string) error {
	baseURL := strings.TrimRight(strings.TrimSpace(s.cfg.DownloadBaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultDownloadBaseURL
	}
	url := baseURL + "/" + fileName

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download model: request: %w", err)
	}
	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download model: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: fetch %s: http %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), fileName+".partial-*")
	if err != nil {
		return fmt.Errorf("download model: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("download model: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("download model: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("download model: finalize: %w", err)
	}
	return nil
}
