package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"overdub/internal/history"
	"overdub/internal/language"
	"overdub/internal/logging"
	"overdub/internal/media/ffmpeg"
	"overdub/internal/pipeline"
	"overdub/internal/services"
	"overdub/internal/services/edgetts"
	"overdub/internal/services/gtranslate"
	"overdub/internal/services/whisper"
	"overdub/internal/voice"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var modelFlag string
	var voiceFlag string

	cmd := &cobra.Command{
		Use:   "translate <video> <target-language>",
		Short: "Translate a video's speech and remux the dubbed audio",
		Long: `Translate extracts the audio track from a video, transcribes it, translates
the transcript into the target language, synthesizes translated speech, and
muxes the new audio back over the original video stream.

The target language is a BCP-47 code such as "es", "fr", or "pt-BR". Output
defaults to <name>_translated_<language><ext> next to the input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			model := strings.TrimSpace(modelFlag)
			if model == "" {
				model = cfg.Whisper.Model
			}
			transcriber := whisper.NewService(whisper.Config{
				Model:           model,
				Binary:          cfg.Whisper.Binary,
				CacheDir:        cfg.Paths.ModelCacheDir,
				DownloadBaseURL: cfg.Whisper.DownloadBaseURL,
				Timeout:         time.Duration(cfg.Whisper.TimeoutSeconds) * time.Second,
			})
			translator := gtranslate.NewClient(
				gtranslate.WithBaseURL(cfg.Translate.BaseURL),
				gtranslate.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Translate.TimeoutSeconds) * time.Second}),
			)
			tts := edgetts.NewService(edgetts.Config{
				VoicesURL: cfg.TTS.VoicesURL,
				Timeout:   time.Duration(cfg.TTS.TimeoutSeconds) * time.Second,
			})

			var voices pipeline.VoiceResolver = voice.NewResolver(tts, cfg.TTS.DefaultVoice)
			if forced := strings.TrimSpace(voiceFlag); forced != "" {
				voices = fixedVoice{id: forced}
			}

			var recorder pipeline.Recorder
			store, storeErr := history.Open(cfg.Paths.HistoryDB)
			if storeErr != nil {
				logger.Warn("run history unavailable", logging.Error(storeErr))
			} else {
				defer store.Close()
				recorder = store
			}

			orchestrator, err := pipeline.New(pipeline.Options{
				Media:       ffmpeg.NewEngine(cfg.Media.FFmpegBinary),
				Transcriber: transcriber,
				Translator:  translator,
				Synthesizer: tts,
				Voices:      voices,
				Recorder:    recorder,
				Logger:      logger,
				StagingDir:  cfg.Paths.StagingDir,
				VideoCodec:  cfg.Media.VideoCodec,
				AudioCodec:  cfg.Media.AudioCodec,
			})
			if err != nil {
				return err
			}

			req := pipeline.Request{
				Input:          args[0],
				TargetLanguage: args[1],
				Output:         strings.TrimSpace(outputFlag),
			}
			if err := pipeline.ValidateRequest(req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Loading %s model...\n", model)
			handle, err := transcriber.LoadModel(runCtx)
			if err != nil {
				return services.Wrap(services.ErrModelNotLoaded, "", "load model", model, err)
			}
			orchestrator.SetModel(handle)

			var bar *progressbar.ProgressBar
			if cfg.Logging.Format == "console" && isatty.IsTerminal(os.Stderr.Fd()) {
				bar = progressbar.NewOptions(100,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("starting"),
					progressbar.OptionSetWidth(30),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				req.OnProgress = func(p pipeline.Progress) {
					bar.Describe(p.Stage)
					_ = bar.Set(p.Percent)
				}
			}

			result, err := orchestrator.Translate(runCtx, req)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Translated to %s using voice %s", language.DisplayName(args[1]), result.Voice.VoiceID)
			if result.Voice.UsedFallback {
				fmt.Fprint(out, " (fallback)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Output: %s\n", result.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination path for the translated video")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Transcription model override (tiny, base, small, ...)")
	cmd.Flags().StringVar(&voiceFlag, "voice", "", "Synthesis voice override, e.g. es-MX-DaliaNeural")
	return cmd
}

// fixedVoice bypasses catalog resolution when the user names a voice.
type fixedVoice struct {
	id string
}

func (f fixedVoice) Resolve(_ context.Context, _ string) (voice.Resolution, error) {
	parts := strings.SplitN(f.id, "-", 3)
	locale := f.id
	if len(parts) >= 2 {
		locale = parts[0] + "-" + parts[1]
	}
	return voice.Resolution{VoiceID: f.id, Locale: locale}, nil
}
