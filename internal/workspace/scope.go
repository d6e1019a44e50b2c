package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Scope owns one run's temporary directory and every path allocated under it.
type Scope struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// Open allocates a fresh run directory under baseDir. The runID keeps the
// directory name attributable to a specific run in logs and stale cleanup.
func Open(baseDir, runID string) (*Scope, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, fmt.Errorf("workspace: base directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: ensure base directory: %w", err)
	}

	prefix := "run-"
	if runID = strings.TrimSpace(runID); runID != "" {
		prefix = "run-" + runID + "-"
	}
	dir, err := os.MkdirTemp(baseDir, prefix)
	if err != nil {
		return nil, fmt.Errorf("workspace: create run directory: %w", err)
	}
	return &Scope{dir: dir}, nil
}

// Dir returns the scope's directory.
func (s *Scope) Dir() string {
	return s.dir
}

// Path returns a path for the named artifact under the scope directory.
func (s *Scope) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Close removes the scope directory and all contents. It is idempotent:
// closing twice, or closing after the directory was already removed, is not
// an error.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := os.RemoveAll(s.dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("workspace: remove run directory: %w", err)
	}
	return nil
}
