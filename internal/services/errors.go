package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelNotLoaded indicates the transcription model handle was not
	// loaded before the pipeline ran. Model loading may involve a network
	// fetch, so it is an explicit caller step rather than an implicit one.
	ErrModelNotLoaded = errors.New("transcription model not loaded")
	// ErrMediaRead indicates the source container could not be read or has
	// no usable audio track.
	ErrMediaRead = errors.New("media read error")
	// ErrTranscription indicates a transcription backend failure.
	ErrTranscription = errors.New("transcription error")
	// ErrTranslation indicates a translation backend failure.
	ErrTranslation = errors.New("translation error")
	// ErrSynthesis indicates a speech synthesis failure. Voice-resolution
	// fallback is a warning, not this error.
	ErrSynthesis = errors.New("synthesis error")
	// ErrMediaWrite indicates the output container could not be produced.
	ErrMediaWrite = errors.New("media write error")
	// ErrValidation indicates bad caller input rejected before any stage ran.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration indicates unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
