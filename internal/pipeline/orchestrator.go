package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"overdub/internal/fileutil"
	"overdub/internal/history"
	"overdub/internal/logging"
	"overdub/internal/services"
	"overdub/internal/services/gtranslate"
	"overdub/internal/services/whisper"
	"overdub/internal/voice"
	"overdub/internal/workspace"
)

// MediaEngine reads and writes media containers.
type MediaEngine interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	Remux(ctx context.Context, videoPath, audioPath, outputPath, videoCodec, audioCodec string) error
}

// Transcriber turns extracted audio into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, handle *whisper.ModelHandle, audioPath, outputDir string) (whisper.Transcript, error)
}

// Translator converts transcript text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (gtranslate.Result, error)
}

// Synthesizer renders translated text as speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, outputPath string) error
}

// VoiceResolver picks the synthesis voice for a language code.
type VoiceResolver interface {
	Resolve(ctx context.Context, languageCode string) (voice.Resolution, error)
}

// Recorder persists run lifecycle metadata. All recorder failures are logged
// and swallowed; history is auxiliary to the run itself.
type Recorder interface {
	Create(ctx context.Context, run *history.Run) error
	Transition(ctx context.Context, id string, next history.Status) error
	SetVoice(ctx context.Context, id, voiceID string, usedFallback bool) error
	MarkCompleted(ctx context.Context, id, outputPath string) error
	MarkFailed(ctx context.Context, id, message string) error
}

// supportedExtensions lists the container formats accepted as input.
var supportedExtensions = map[string]struct{}{
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".flv":  {},
}

// Options wires the orchestrator's collaborators. Media, Transcriber,
// Translator, Synthesizer, and Voices are required; Recorder and Logger are
// optional.
type Options struct {
	Media       MediaEngine
	Transcriber Transcriber
	Translator  Translator
	Synthesizer Synthesizer
	Voices      VoiceResolver
	Recorder    Recorder
	Logger      *slog.Logger

	StagingDir string
	VideoCodec string
	AudioCodec string
}

// Orchestrator runs the translation pipeline end to end.
type Orchestrator struct {
	media       MediaEngine
	transcriber Transcriber
	translator  Translator
	synthesizer Synthesizer
	voices      VoiceResolver
	recorder    Recorder
	logger      *slog.Logger

	stagingDir string
	videoCodec string
	audioCodec string

	model *whisper.ModelHandle
}

// New builds an orchestrator from its collaborators.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Media == nil:
		return nil, fmt.Errorf("pipeline: media engine required")
	case opts.Transcriber == nil:
		return nil, fmt.Errorf("pipeline: transcriber required")
	case opts.Translator == nil:
		return nil, fmt.Errorf("pipeline: translator required")
	case opts.Synthesizer == nil:
		return nil, fmt.Errorf("pipeline: synthesizer required")
	case opts.Voices == nil:
		return nil, fmt.Errorf("pipeline: voice resolver required")
	case strings.TrimSpace(opts.StagingDir) == "":
		return nil, fmt.Errorf("pipeline: staging directory required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		media:       opts.Media,
		transcriber: opts.Transcriber,
		translator:  opts.Translator,
		synthesizer: opts.Synthesizer,
		voices:      opts.Voices,
		recorder:    opts.Recorder,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		stagingDir:  opts.StagingDir,
		videoCodec:  opts.VideoCodec,
		audioCodec:  opts.AudioCodec,
	}, nil
}

// SetModel installs the shared transcription model handle. Call once after
// loading, before any Translate call; the handle is read-only afterwards.
func (o *Orchestrator) SetModel(handle *whisper.ModelHandle) {
	o.model = handle
}

// Request describes one translation run.
type Request struct {
	// Input is the source video path.
	Input string
	// TargetLanguage is the translation target, e.g. "es" or "pt-BR".
	TargetLanguage string
	// Output overrides the derived output path when non-empty.
	Output string
	// OnProgress, when set, receives stage checkpoints.
	OnProgress ProgressFunc
}

// Result reports a completed run.
type Result struct {
	RunID          string
	OutputPath     string
	Transcript     whisper.Transcript
	TranslatedText string
	Voice          voice.Resolution
}

// DefaultOutputPath derives the output name from the input: the stem gains a
// _translated_<lang> suffix and the container extension is preserved.
func DefaultOutputPath(input, targetLanguage string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return fmt.Sprintf("%s_translated_%s%s", stem, targetLanguage, ext)
}

// Translate runs the full pipeline for one video. Validation failures and a
// missing model are reported before any stage runs or any workspace is
// allocated; once stages begin, the first failure aborts the run and the
// workspace is removed on every exit path.
func (o *Orchestrator) Translate(ctx context.Context, req Request) (Result, error) {
	if err := ValidateRequest(req); err != nil {
		return Result{}, err
	}
	if o.model == nil {
		return Result{}, services.Wrap(services.ErrModelNotLoaded, "", "translate", "load the transcription model before starting a run", nil)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	output := req.Output
	if output == "" {
		output = DefaultOutputPath(req.Input, req.TargetLanguage)
	}

	job := &job{
		runID:      runID,
		input:      req.Input,
		output:     output,
		targetLang: req.TargetLanguage,
		onProgress: req.OnProgress,
	}

	o.recordCreate(ctx, logger, job)

	scope, err := workspace.Open(o.stagingDir, runID)
	if err != nil {
		wrapped := services.Wrap(services.ErrConfiguration, "", "open workspace", "allocate run directory", err)
		o.recordFailed(ctx, logger, job, wrapped)
		return Result{}, wrapped
	}
	defer func() {
		if cerr := scope.Close(); cerr != nil {
			logger.Warn("workspace cleanup failed", logging.Error(cerr))
		}
	}()

	logger.Info("run started",
		logging.String("input", req.Input),
		logging.String("target_language", req.TargetLanguage),
		logging.String("output", output))

	result := Result{RunID: runID}

	extractedAudio := scope.Path("original_audio.wav")
	if err := o.runStage(ctx, job, StageExtract, percentExtract, func(ctx context.Context) error {
		o.recordTransition(ctx, logger, job, history.StatusExtractingAudio)
		if err := o.media.ExtractAudio(ctx, req.Input, extractedAudio); err != nil {
			return services.Wrap(services.ErrMediaRead, StageExtract, "extract audio track", req.Input, err)
		}
		return nil
	}); err != nil {
		o.recordFailed(ctx, logger, job, err)
		return Result{}, err
	}

	if err := o.runStage(ctx, job, StageTranscribe, percentTranscribe, func(ctx context.Context) error {
		o.recordTransition(ctx, logger, job, history.StatusTranscribing)
		transcript, terr := o.transcriber.Transcribe(ctx, o.model, extractedAudio, scope.Dir())
		if terr != nil {
			return services.Wrap(services.ErrTranscription, StageTranscribe, "transcribe audio", extractedAudio, terr)
		}
		if strings.TrimSpace(transcript.Text) == "" {
			return services.Wrap(services.ErrTranscription, StageTranscribe, "transcribe audio", "no speech recognized in source audio", nil)
		}
		result.Transcript = transcript
		return nil
	}); err != nil {
		o.recordFailed(ctx, logger, job, err)
		return Result{}, err
	}

	if err := o.runStage(ctx, job, StageTranslate, percentTranslate, func(ctx context.Context) error {
		o.recordTransition(ctx, logger, job, history.StatusTranslating)
		translated, terr := o.translator.Translate(ctx, result.Transcript.Text, "", req.TargetLanguage)
		if terr != nil {
			return services.Wrap(services.ErrTranslation, StageTranslate, "translate transcript", req.TargetLanguage, terr)
		}
		if strings.TrimSpace(translated.Text) == "" {
			return services.Wrap(services.ErrTranslation, StageTranslate, "translate transcript", "translation produced no text", nil)
		}
		result.TranslatedText = translated.Text
		return nil
	}); err != nil {
		o.recordFailed(ctx, logger, job, err)
		return Result{}, err
	}

	dubbedAudio := scope.Path("translated_audio.mp3")
	if err := o.runStage(ctx, job, StageSynthesize, percentSynthesize, func(ctx context.Context) error {
		o.recordTransition(ctx, logger, job, history.StatusSynthesizing)
		resolution, rerr := o.voices.Resolve(ctx, req.TargetLanguage)
		if rerr != nil {
			return services.Wrap(services.ErrSynthesis, StageSynthesize, "resolve voice", req.TargetLanguage, rerr)
		}
		if resolution.UsedFallback {
			logging.WithContext(ctx, o.logger).Warn("no voice for target language, using default",
				logging.String("target_language", req.TargetLanguage),
				logging.String("voice", resolution.VoiceID))
		}
		result.Voice = resolution
		o.recordVoice(ctx, logger, job, resolution)
		if serr := o.synthesizer.Synthesize(ctx, result.TranslatedText, resolution.VoiceID, dubbedAudio); serr != nil {
			return services.Wrap(services.ErrSynthesis, StageSynthesize, "synthesize speech", resolution.VoiceID, serr)
		}
		return nil
	}); err != nil {
		o.recordFailed(ctx, logger, job, err)
		return Result{}, err
	}

	// The artifact takes the output path's extension so ffmpeg assembles the
	// container format the caller asked for, not the input's.
	remuxed := scope.Path("output" + filepath.Ext(output))
	if err := o.runStage(ctx, job, StageRemux, percentRemux, func(ctx context.Context) error {
		o.recordTransition(ctx, logger, job, history.StatusRemuxing)
		if err := o.media.Remux(ctx, req.Input, dubbedAudio, remuxed, o.videoCodec, o.audioCodec); err != nil {
			return services.Wrap(services.ErrMediaWrite, StageRemux, "remux audio track", req.Input, err)
		}
		// The container is assembled inside the workspace and published in
		// one copy, so a remux failure never leaves a partial output file at
		// the destination.
		if err := fileutil.CopyFile(remuxed, output); err != nil {
			return services.Wrap(services.ErrMediaWrite, StageRemux, "publish output", output, err)
		}
		return nil
	}); err != nil {
		o.recordFailed(ctx, logger, job, err)
		return Result{}, err
	}

	result.OutputPath = output
	job.emit(Progress{Stage: StageComplete, Percent: percentComplete, Message: output})
	o.recordCompleted(ctx, logger, job)
	logger.Info("run completed",
		logging.String("output", output),
		logging.String("voice", result.Voice.VoiceID),
		logging.Bool("fallback_voice", result.Voice.UsedFallback))
	return result, nil
}

// ValidateRequest rejects unusable input before any stage runs or any
// model loading happens.
func ValidateRequest(req Request) error {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return services.Wrap(services.ErrValidation, "", "validate request", "input path required", nil)
	}
	ext := strings.ToLower(filepath.Ext(input))
	if _, ok := supportedExtensions[ext]; !ok {
		return services.Wrap(services.ErrValidation, "", "validate request",
			fmt.Sprintf("unsupported container %q for %s", ext, input), nil)
	}
	info, err := os.Stat(input)
	if err != nil {
		return services.Wrap(services.ErrValidation, "", "validate request", "input not readable", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "", "validate request", input+" is a directory", nil)
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return services.Wrap(services.ErrValidation, "", "validate request", "target language required", nil)
	}
	return nil
}

func (o *Orchestrator) recordCreate(ctx context.Context, logger *slog.Logger, job *job) {
	if o.recorder == nil {
		return
	}
	run := &history.Run{
		ID:             job.runID,
		SourcePath:     job.input,
		TargetLanguage: job.targetLang,
		OutputPath:     job.output,
	}
	if err := o.recorder.Create(ctx, run); err != nil {
		logger.Warn("history create failed", logging.Error(err))
	}
}

func (o *Orchestrator) recordTransition(ctx context.Context, logger *slog.Logger, job *job, next history.Status) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Transition(ctx, job.runID, next); err != nil {
		logger.Warn("history transition failed", logging.String("status", string(next)), logging.Error(err))
	}
}

func (o *Orchestrator) recordVoice(ctx context.Context, logger *slog.Logger, job *job, res voice.Resolution) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.SetVoice(ctx, job.runID, res.VoiceID, res.UsedFallback); err != nil {
		logger.Warn("history voice update failed", logging.Error(err))
	}
}

func (o *Orchestrator) recordCompleted(ctx context.Context, logger *slog.Logger, job *job) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.MarkCompleted(ctx, job.runID, job.output); err != nil {
		logger.Warn("history completion update failed", logging.Error(err))
	}
}

func (o *Orchestrator) recordFailed(ctx context.Context, logger *slog.Logger, job *job, cause error) {
	if o.recorder == nil {
		return
	}
	var stageErr *StageError
	message := cause.Error()
	if errors.As(cause, &stageErr) {
		message = stageErr.Error()
	}
	if err := o.recorder.MarkFailed(ctx, job.runID, message); err != nil {
		logger.Warn("history failure update failed", logging.Error(err))
	}
}
