package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"overdub/internal/services"
)

func writeCLIConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	cfgPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
staging_dir = %q
log_dir = %q
model_cache_dir = %q
history_db = %q
`,
		filepath.Join(base, "staging"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "models"),
		filepath.Join(base, "history.db"),
	)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errBuf.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	cfgPath := writeCLIConfig(t)

	out, _, err := runCLI(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "staging_dir")
	requireContains(t, out, "whisper")
}

func TestHistoryCommandReportsEmpty(t *testing.T) {
	cfgPath := writeCLIConfig(t)

	out, _, err := runCLI(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestStagingCleanReportsNothingToDo(t *testing.T) {
	cfgPath := writeCLIConfig(t)

	out, _, err := runCLI(t, "--config", cfgPath, "staging", "clean")
	if err != nil {
		t.Fatalf("staging clean: %v", err)
	}
	requireContains(t, out, "No run directories to clean")
}

func TestTranslateRejectsUnsupportedInput(t *testing.T) {
	cfgPath := writeCLIConfig(t)
	input := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(input, []byte("text"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	_, _, err := runCLI(t, "--config", cfgPath, "translate", input, "es")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
