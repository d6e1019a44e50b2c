package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestRun(t *testing.T, store *Store) *Run {
	t.Helper()
	run := &Run{
		ID:             uuid.NewString(),
		SourcePath:     "/videos/clip.mp4",
		TargetLanguage: "es",
	}
	if err := store.Create(context.Background(), run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return run
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	run := newTestRun(t, store)

	got, err := store.Get(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusCreated {
		t.Fatalf("expected created status, got %s", got.Status)
	}
	if got.SourcePath != "/videos/clip.mp4" || got.TargetLanguage != "es" {
		t.Fatalf("unexpected run %+v", got)
	}
}

func TestGetMissingRun(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionsForwardOnly(t *testing.T) {
	store := newTestStore(t)
	run := newTestRun(t, store)
	ctx := context.Background()

	order := []Status{
		StatusExtractingAudio,
		StatusTranscribing,
		StatusTranslating,
		StatusSynthesizing,
		StatusRemuxing,
	}
	for _, status := range order {
		if err := store.Transition(ctx, run.ID, status); err != nil {
			t.Fatalf("Transition to %s: %v", status, err)
		}
	}

	// Backward transition rejected.
	if err := store.Transition(ctx, run.ID, StatusTranscribing); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestMarkCompleted(t *testing.T) {
	store := newTestStore(t)
	run := newTestRun(t, store)
	ctx := context.Background()

	if err := store.MarkCompleted(ctx, run.ID, "/videos/clip_translated_es.mp4"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusCompleted || got.OutputPath != "/videos/clip_translated_es.mp4" {
		t.Fatalf("unexpected run %+v", got)
	}

	// Terminal states reject further transitions.
	if err := store.Transition(ctx, run.ID, StatusFailed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected terminal state to be frozen, got %v", err)
	}
}

func TestMarkFailedFromAnyStage(t *testing.T) {
	store := newTestStore(t)
	run := newTestRun(t, store)
	ctx := context.Background()

	if err := store.Transition(ctx, run.ID, StatusTranslating); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := store.MarkFailed(ctx, run.ID, "translate: http 503"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusFailed || got.ErrorMessage != "translate: http 503" {
		t.Fatalf("unexpected run %+v", got)
	}
}

func TestSetVoice(t *testing.T) {
	store := newTestStore(t)
	run := newTestRun(t, store)
	ctx := context.Background()

	if err := store.SetVoice(ctx, run.ID, "en-US-AriaNeural", true); err != nil {
		t.Fatalf("SetVoice: %v", err)
	}
	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Voice != "en-US-AriaNeural" || !got.UsedFallbackVoice {
		t.Fatalf("unexpected voice fields %+v", got)
	}

	if err := store.SetVoice(ctx, "missing", "v", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecentOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	var ids []string
	for range 3 {
		run := newTestRun(t, store)
		ids = append(ids, run.ID)
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit respected, got %d", len(runs))
	}
	// Newest first.
	if runs[0].ID != ids[2] {
		t.Fatalf("expected newest run first, got %s", runs[0].ID)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run := newTestRun(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), run.ID); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}
