package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenCreatesUniqueDirectories(t *testing.T) {
	base := t.TempDir()
	first, err := Open(base, "abc")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer first.Close()
	second, err := Open(base, "abc")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer second.Close()

	if first.Dir() == second.Dir() {
		t.Fatalf("expected unique directories, both %s", first.Dir())
	}
	if !strings.Contains(filepath.Base(first.Dir()), "abc") {
		t.Fatalf("expected run id in directory name, got %s", first.Dir())
	}
}

func TestPathIsUnderScope(t *testing.T) {
	scope, err := Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer scope.Close()

	p := scope.Path("audio.wav")
	if filepath.Dir(p) != scope.Dir() {
		t.Fatalf("expected %s under %s", p, scope.Dir())
	}
}

func TestCloseRemovesDirectory(t *testing.T) {
	scope, err := Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := os.WriteFile(scope.Path("audio.wav"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	if err := scope.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(scope.Dir()); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed, stat err=%v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	scope, err := Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := scope.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := scope.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCloseAfterExternalRemoval(t *testing.T) {
	scope, err := Open(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := os.RemoveAll(scope.Dir()); err != nil {
		t.Fatalf("remove scope dir: %v", err)
	}
	if err := scope.Close(); err != nil {
		t.Fatalf("Close after external removal: %v", err)
	}
}

func TestOpenRequiresBaseDir(t *testing.T) {
	if _, err := Open("  ", ""); err == nil {
		t.Fatal("expected error for empty base dir")
	}
}
