package history

import "time"

// Status represents the lifecycle of a translation run.
type Status string

const (
	StatusCreated         Status = "created"
	StatusExtractingAudio Status = "extracting_audio"
	StatusTranscribing    Status = "transcribing"
	StatusTranslating     Status = "translating"
	StatusSynthesizing    Status = "synthesizing"
	StatusRemuxing        Status = "remuxing"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// statusRank orders the forward-only lifecycle. Failed is reachable from any
// non-terminal status.
var statusRank = map[Status]int{
	StatusCreated:         0,
	StatusExtractingAudio: 1,
	StatusTranscribing:    2,
	StatusTranslating:     3,
	StatusSynthesizing:    4,
	StatusRemuxing:        5,
	StatusCompleted:       6,
	StatusFailed:          7,
}

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next respects the
// forward-only state machine.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	return to > from
}

// Run is one translation run record.
type Run struct {
	ID                string
	SourcePath        string
	TargetLanguage    string
	Voice             string
	UsedFallbackVoice bool
	Status            Status
	ErrorMessage      string
	OutputPath        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
