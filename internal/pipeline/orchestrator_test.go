package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"overdub/internal/history"
	"overdub/internal/services"
	"overdub/internal/services/gtranslate"
	"overdub/internal/services/whisper"
	"overdub/internal/voice"
)

type fakeMedia struct {
	calls      *[]string
	extractErr error
	remuxErr   error
	remuxOut   string
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, source, dest string) error {
	*f.calls = append(*f.calls, StageExtract)
	if f.extractErr != nil {
		return f.extractErr
	}
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeMedia) Remux(ctx context.Context, videoPath, audioPath, outputPath, videoCodec, audioCodec string) error {
	*f.calls = append(*f.calls, StageRemux)
	f.remuxOut = outputPath
	if f.remuxErr != nil {
		return f.remuxErr
	}
	return os.WriteFile(outputPath, []byte("video"), 0o644)
}

type fakeTranscriber struct {
	calls *[]string
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, handle *whisper.ModelHandle, audioPath, outputDir string) (whisper.Transcript, error) {
	*f.calls = append(*f.calls, StageTranscribe)
	if f.err != nil {
		return whisper.Transcript{}, f.err
	}
	return whisper.Transcript{
		Text: "hello world",
		Segments: []whisper.Segment{
			{Start: 0, End: 2 * time.Second, Text: "hello world"},
		},
	}, nil
}

type fakeTranslator struct {
	calls *[]string
	err   error
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (gtranslate.Result, error) {
	*f.calls = append(*f.calls, StageTranslate)
	if f.err != nil {
		return gtranslate.Result{}, f.err
	}
	return gtranslate.Result{Text: "hola mundo", DetectedSource: "en"}, nil
}

type fakeSynthesizer struct {
	calls *[]string
	err   error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voiceID, outputPath string) error {
	*f.calls = append(*f.calls, StageSynthesize)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("mp3"), 0o644)
}

type fakeResolver struct {
	resolution voice.Resolution
	err        error
}

func (f *fakeResolver) Resolve(ctx context.Context, languageCode string) (voice.Resolution, error) {
	if f.err != nil {
		return voice.Resolution{}, f.err
	}
	return f.resolution, nil
}

type fakeRecorder struct {
	created   []history.Run
	statuses  []history.Status
	voiceID   string
	completed string
	failed    string
}

func (f *fakeRecorder) Create(ctx context.Context, run *history.Run) error {
	f.created = append(f.created, *run)
	return nil
}

func (f *fakeRecorder) Transition(ctx context.Context, id string, next history.Status) error {
	f.statuses = append(f.statuses, next)
	return nil
}

func (f *fakeRecorder) SetVoice(ctx context.Context, id, voiceID string, usedFallback bool) error {
	f.voiceID = voiceID
	return nil
}

func (f *fakeRecorder) MarkCompleted(ctx context.Context, id, outputPath string) error {
	f.completed = outputPath
	return nil
}

func (f *fakeRecorder) MarkFailed(ctx context.Context, id, message string) error {
	f.failed = message
	return nil
}

type harness struct {
	orchestrator *Orchestrator
	calls        *[]string
	media        *fakeMedia
	transcriber  *fakeTranscriber
	translator   *fakeTranslator
	synthesizer  *fakeSynthesizer
	resolver     *fakeResolver
	recorder     *fakeRecorder
	stagingDir   string
	input        string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	calls := &[]string{}
	inputDir := t.TempDir()
	input := filepath.Join(inputDir, "talk.mp4")
	if err := os.WriteFile(input, []byte("fake video"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	h := &harness{
		calls:       calls,
		media:       &fakeMedia{calls: calls},
		transcriber: &fakeTranscriber{calls: calls},
		translator:  &fakeTranslator{calls: calls},
		synthesizer: &fakeSynthesizer{calls: calls},
		resolver:    &fakeResolver{resolution: voice.Resolution{VoiceID: "es-ES-ElviraNeural", Locale: "es-ES"}},
		recorder:    &fakeRecorder{},
		stagingDir:  t.TempDir(),
		input:       input,
	}

	orchestrator, err := New(Options{
		Media:       h.media,
		Transcriber: h.transcriber,
		Translator:  h.translator,
		Synthesizer: h.synthesizer,
		Voices:      h.resolver,
		Recorder:    h.recorder,
		StagingDir:  h.stagingDir,
		VideoCodec:  "copy",
		AudioCodec:  "aac",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	orchestrator.SetModel(&whisper.ModelHandle{Name: "base", Path: "/tmp/ggml-base.bin"})
	h.orchestrator = orchestrator
	return h
}

func stagingEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	return entries
}

func TestTranslateRunsStagesInOrder(t *testing.T) {
	h := newHarness(t)

	var events []Progress
	result, err := h.orchestrator.Translate(context.Background(), Request{
		Input:          h.input,
		TargetLanguage: "es",
		OnProgress:     func(p Progress) { events = append(events, p) },
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	wantCalls := []string{StageExtract, StageTranscribe, StageTranslate, StageSynthesize, StageRemux}
	if len(*h.calls) != len(wantCalls) {
		t.Fatalf("expected %d stage calls, got %v", len(wantCalls), *h.calls)
	}
	for i, want := range wantCalls {
		if (*h.calls)[i] != want {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, (*h.calls)[i], want, *h.calls)
		}
	}

	wantPercents := []int{10, 30, 50, 70, 85, 100}
	if len(events) != len(wantPercents) {
		t.Fatalf("expected %d progress events, got %d: %+v", len(wantPercents), len(events), events)
	}
	for i, want := range wantPercents {
		if events[i].Percent != want {
			t.Fatalf("event %d percent = %d, want %d", i, events[i].Percent, want)
		}
	}
	if events[len(events)-1].Stage != StageComplete {
		t.Fatalf("final event stage = %q", events[len(events)-1].Stage)
	}

	wantOutput := DefaultOutputPath(h.input, "es")
	if result.OutputPath != wantOutput {
		t.Fatalf("output path = %q, want %q", result.OutputPath, wantOutput)
	}
	if _, err := os.Stat(wantOutput); err != nil {
		t.Fatalf("expected published output: %v", err)
	}
	if result.TranslatedText != "hola mundo" {
		t.Fatalf("translated text = %q", result.TranslatedText)
	}
	if result.Transcript.Text != "hello world" {
		t.Fatalf("transcript text = %q", result.Transcript.Text)
	}
	if result.Voice.VoiceID != "es-ES-ElviraNeural" || result.Voice.UsedFallback {
		t.Fatalf("unexpected voice resolution %+v", result.Voice)
	}

	if entries := stagingEntries(t, h.stagingDir); len(entries) != 0 {
		t.Fatalf("expected staging dir cleaned after success, found %d entries", len(entries))
	}

	wantStatuses := []history.Status{
		history.StatusExtractingAudio,
		history.StatusTranscribing,
		history.StatusTranslating,
		history.StatusSynthesizing,
		history.StatusRemuxing,
	}
	if len(h.recorder.statuses) != len(wantStatuses) {
		t.Fatalf("recorded statuses = %v", h.recorder.statuses)
	}
	for i, want := range wantStatuses {
		if h.recorder.statuses[i] != want {
			t.Fatalf("status %d = %q, want %q", i, h.recorder.statuses[i], want)
		}
	}
	if h.recorder.completed != wantOutput {
		t.Fatalf("recorded completion path = %q", h.recorder.completed)
	}
	if h.recorder.voiceID != "es-ES-ElviraNeural" {
		t.Fatalf("recorded voice = %q", h.recorder.voiceID)
	}
}

func TestTranslateStopsAfterExtractFailure(t *testing.T) {
	h := newHarness(t)
	h.media.extractErr = services.Wrap(services.ErrMediaRead, StageExtract, "extract audio track", "no audio stream", nil)

	var events []Progress
	_, err := h.orchestrator.Translate(context.Background(), Request{
		Input:          h.input,
		TargetLanguage: "es",
		OnProgress:     func(p Progress) { events = append(events, p) },
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %T: %v", err, err)
	}
	if stageErr.Stage != StageExtract {
		t.Fatalf("failed stage = %q", stageErr.Stage)
	}
	if !errors.Is(err, services.ErrMediaRead) {
		t.Fatalf("expected media read sentinel, got %v", err)
	}

	if len(*h.calls) != 1 || (*h.calls)[0] != StageExtract {
		t.Fatalf("expected only the extract call, got %v", *h.calls)
	}
	if len(events) != 1 || events[0].Percent != 10 {
		t.Fatalf("expected single 10%% event, got %+v", events)
	}

	if entries := stagingEntries(t, h.stagingDir); len(entries) != 0 {
		t.Fatalf("expected staging dir cleaned after failure, found %d entries", len(entries))
	}
	if h.recorder.failed == "" {
		t.Fatal("expected run marked failed")
	}
}

func TestTranslateSynthesisFailureCleansUp(t *testing.T) {
	h := newHarness(t)
	h.synthesizer.err = services.Wrap(services.ErrSynthesis, StageSynthesize, "synthesize speech", "edge-tts exited 1", nil)

	_, err := h.orchestrator.Translate(context.Background(), Request{Input: h.input, TargetLanguage: "es"})
	if !errors.Is(err, services.ErrSynthesis) {
		t.Fatalf("expected synthesis sentinel, got %v", err)
	}
	for _, call := range *h.calls {
		if call == StageRemux {
			t.Fatal("remux ran after synthesis failure")
		}
	}
	if entries := stagingEntries(t, h.stagingDir); len(entries) != 0 {
		t.Fatalf("expected staging dir cleaned, found %d entries", len(entries))
	}
	if _, err := os.Stat(DefaultOutputPath(h.input, "es")); !os.IsNotExist(err) {
		t.Fatalf("expected no output file after failure, stat err = %v", err)
	}
}

func TestTranslateRequiresLoadedModel(t *testing.T) {
	h := newHarness(t)
	h.orchestrator.SetModel(nil)

	_, err := h.orchestrator.Translate(context.Background(), Request{Input: h.input, TargetLanguage: "es"})
	if !errors.Is(err, services.ErrModelNotLoaded) {
		t.Fatalf("expected model-not-loaded sentinel, got %v", err)
	}
	if len(*h.calls) != 0 {
		t.Fatalf("no stage should run, got %v", *h.calls)
	}
	if entries := stagingEntries(t, h.stagingDir); len(entries) != 0 {
		t.Fatal("no workspace should be allocated before the model check")
	}
}

func TestTranslateValidatesInput(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		req  Request
	}{
		{"empty input", Request{TargetLanguage: "es"}},
		{"unsupported container", Request{Input: h.input + ".txt", TargetLanguage: "es"}},
		{"missing file", Request{Input: filepath.Join(t.TempDir(), "absent.mp4"), TargetLanguage: "es"}},
		{"empty target language", Request{Input: h.input}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.orchestrator.Translate(context.Background(), tt.req)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation sentinel, got %v", err)
			}
		})
	}
	if len(*h.calls) != 0 {
		t.Fatalf("no stage should run on invalid input, got %v", *h.calls)
	}
}

func TestTranslateFallbackVoiceStillCompletes(t *testing.T) {
	h := newHarness(t)
	h.resolver.resolution = voice.Resolution{VoiceID: voice.DefaultVoice, Locale: "en-US", UsedFallback: true}

	result, err := h.orchestrator.Translate(context.Background(), Request{Input: h.input, TargetLanguage: "xx"})
	if err != nil {
		t.Fatalf("fallback voice run should succeed: %v", err)
	}
	if !result.Voice.UsedFallback {
		t.Fatal("expected fallback flag on result")
	}
	if result.Voice.VoiceID != voice.DefaultVoice {
		t.Fatalf("voice = %q", result.Voice.VoiceID)
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Fatalf("expected output despite fallback: %v", err)
	}
}

func TestTranslateExplicitOutputPath(t *testing.T) {
	h := newHarness(t)
	output := filepath.Join(t.TempDir(), "dubbed.mp4")

	result, err := h.orchestrator.Translate(context.Background(), Request{
		Input:          h.input,
		TargetLanguage: "fr",
		Output:         output,
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result.OutputPath != output {
		t.Fatalf("output path = %q, want %q", result.OutputPath, output)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output at explicit path: %v", err)
	}
}

func TestTranslateOutputContainerFollowsOutputExtension(t *testing.T) {
	h := newHarness(t)
	output := filepath.Join(t.TempDir(), "dubbed.mkv")

	result, err := h.orchestrator.Translate(context.Background(), Request{
		Input:          h.input,
		TargetLanguage: "de",
		Output:         output,
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result.OutputPath != output {
		t.Fatalf("output path = %q, want %q", result.OutputPath, output)
	}
	// The remux must assemble the caller's container format, not the input's,
	// or the published file carries mislabeled bytes under its extension.
	if got := filepath.Ext(h.media.remuxOut); got != ".mkv" {
		t.Fatalf("remux assembled a %q container for a .mkv output (path %s)", got, h.media.remuxOut)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output at explicit path: %v", err)
	}
}

func TestTranslateHonorsCancellation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orchestrator.Translate(ctx, Request{Input: h.input, TargetLanguage: "es"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if len(*h.calls) != 0 {
		t.Fatalf("no stage should run after cancellation, got %v", *h.calls)
	}
	if entries := stagingEntries(t, h.stagingDir); len(entries) != 0 {
		t.Fatal("expected staging dir cleaned after cancellation")
	}
}
