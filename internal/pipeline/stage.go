package pipeline

import (
	"context"
	"fmt"

	"overdub/internal/logging"
	"overdub/internal/services"
)

// Stage names as they appear in progress events, logs, and errors.
const (
	StageExtract    = "extract_audio"
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageSynthesize = "synthesize"
	StageRemux      = "remux"
	StageComplete   = "complete"
)

// Percent checkpoints emitted at the start of each stage. Values are fixed
// per stage rather than measured; a run reports completion as the single
// 100% event after remux succeeds.
const (
	percentExtract    = 10
	percentTranscribe = 30
	percentTranslate  = 50
	percentSynthesize = 70
	percentRemux      = 85
	percentComplete   = 100
)

// Progress is a coarse checkpoint event. Percent is one of the fixed stage
// values; it never decreases within a run.
type Progress struct {
	Stage   string
	Percent int
	Message string
}

// ProgressFunc receives progress checkpoints. Callbacks run synchronously on
// the pipeline goroutine and should return quickly.
type ProgressFunc func(Progress)

// StageError identifies the stage that aborted a run. Unwrap exposes the
// underlying cause so callers can match the service sentinel markers.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// runStage drives one stage: context check, progress emission, scoped
// logging, then the stage body. A failed body is wrapped in a StageError; no
// later stage runs after a failure.
func (o *Orchestrator) runStage(ctx context.Context, job *job, name string, percent int, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, o.logger)
	job.emit(Progress{Stage: name, Percent: percent})
	logger.Info("stage started")
	if err := fn(stageCtx); err != nil {
		logger.Error("stage failed", logging.Error(err))
		return &StageError{Stage: name, Err: err}
	}
	logger.Info("stage completed")
	return nil
}

// job carries per-run state shared across stages.
type job struct {
	runID      string
	input      string
	output     string
	targetLang string
	onProgress ProgressFunc
}

func (j *job) emit(p Progress) {
	if j.onProgress != nil {
		j.onProgress(p)
	}
}
