package ffmpeg

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func capture(calls *[][]string) CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, append([]string{name}, args...))
		return nil
	}
}

func TestExtractAudioArgs(t *testing.T) {
	var calls [][]string
	engine := NewEngine("")
	engine.WithCommandRunner(capture(&calls))

	if err := engine.ExtractAudio(context.Background(), "/in/clip.mp4", "/tmp/audio.wav"); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one ffmpeg invocation, got %d", len(calls))
	}
	args := calls[0]
	if args[0] != DefaultBinary {
		t.Fatalf("expected default binary, got %q", args[0])
	}
	for _, fragment := range [][]string{
		{"-map", "0:a:0"},
		{"-ac", "1"},
		{"-ar", "16000"},
		{"-c:a", "pcm_s16le"},
	} {
		if !containsSeq(args, fragment) {
			t.Fatalf("expected %v in args %v", fragment, args)
		}
	}
	if args[len(args)-1] != "/tmp/audio.wav" {
		t.Fatalf("expected destination last, got %v", args)
	}
}

func TestRemuxArgsReplaceAudio(t *testing.T) {
	var calls [][]string
	engine := NewEngine("ffmpeg6")
	engine.WithCommandRunner(capture(&calls))

	err := engine.Remux(context.Background(), "/in/clip.mp4", "/tmp/dub.mp3", "/out/clip_translated_es.mp4", "copy", "aac")
	if err != nil {
		t.Fatalf("Remux: %v", err)
	}
	args := calls[0]
	if args[0] != "ffmpeg6" {
		t.Fatalf("expected custom binary, got %q", args[0])
	}
	for _, fragment := range [][]string{
		{"-map", "0:v:0"},
		{"-map", "1:a:0"},
		{"-c:v", "copy"},
		{"-c:a", "aac"},
		{"-movflags", "+faststart"},
	} {
		if !containsSeq(args, fragment) {
			t.Fatalf("expected %v in args %v", fragment, args)
		}
	}
	if containsSeq(args, []string{"-shortest"}) {
		t.Fatal("durations must not be reconciled")
	}
}

func TestRemuxSkipsFaststartForMKV(t *testing.T) {
	var calls [][]string
	engine := NewEngine("")
	engine.WithCommandRunner(capture(&calls))

	if err := engine.Remux(context.Background(), "a.mkv", "b.mp3", "c.mkv", "", ""); err != nil {
		t.Fatalf("Remux: %v", err)
	}
	if containsSeq(calls[0], []string{"-movflags"}) {
		t.Fatalf("faststart should be mp4/mov only: %v", calls[0])
	}
}

func TestExtractAudioFailurePropagates(t *testing.T) {
	engine := NewEngine("")
	engine.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("Stream map '0:a:0' matches no streams")
	})
	err := engine.ExtractAudio(context.Background(), "silent.mp4", "out.wav")
	if err == nil || !strings.Contains(err.Error(), "matches no streams") {
		t.Fatalf("expected ffmpeg failure, got %v", err)
	}
}

func TestInputValidation(t *testing.T) {
	engine := NewEngine("")
	if err := engine.ExtractAudio(context.Background(), "", "out.wav"); err == nil {
		t.Fatal("expected error for empty source")
	}
	if err := engine.Remux(context.Background(), "v.mp4", "", "out.mp4", "", ""); err == nil {
		t.Fatal("expected error for empty audio path")
	}
}

func containsSeq(haystack, needle []string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}
