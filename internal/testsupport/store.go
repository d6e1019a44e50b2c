package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"overdub/internal/history"
)

// MustOpenStore opens a history.Store backed by a per-test database and
// registers cleanup.
func MustOpenStore(t testing.TB) *history.Store {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun inserts a fresh run record for tests using the provided store.
func NewRun(t testing.TB, store *history.Store, sourcePath, targetLanguage string) *history.Run {
	t.Helper()

	run := &history.Run{
		ID:             uuid.NewString(),
		SourcePath:     sourcePath,
		TargetLanguage: targetLanguage,
	}
	if err := store.Create(context.Background(), run); err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return run
}
