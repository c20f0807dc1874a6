package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired indicates an expired or invalid credential. Callers must
	// refresh the credential and retry once rather than entering timed retry.
	ErrAuthExpired = errors.New("credential expired or invalid")

	// ErrFatalExternal indicates a permission or configuration failure that
	// retrying cannot fix.
	ErrFatalExternal = errors.New("fatal external error")

	// ErrMalformedResponse indicates the completion service returned text
	// that does not match the expected shape.
	ErrMalformedResponse = errors.New("malformed completion response")
)

// DraftingError is returned when no reply can be drafted: the match set was
// empty or the completion service produced no text.
type DraftingError struct {
	Reason string
	Err    error
}

func (e *DraftingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("drafting failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("drafting failed: %s", e.Reason)
}

func (e *DraftingError) Unwrap() error {
	return e.Err
}

// Stage identifies a pipeline state.
type Stage string

const (
	StageNormalizing Stage = "normalizing"
	StageClassifying Stage = "classifying"
	StageMatching    Stage = "matching"
	StageDrafting    Stage = "drafting"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// TriageError carries the stage a run failed in together with the partial
// result built so far, so callers never get a silent drop.
type TriageError struct {
	Stage   Stage
	Partial *TriageResult
	Err     error
}

func (e *TriageError) Error() string {
	return fmt.Sprintf("triage failed during %s: %v", e.Stage, e.Err)
}

func (e *TriageError) Unwrap() error {
	return e.Err
}
