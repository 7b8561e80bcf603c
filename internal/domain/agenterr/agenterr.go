// Package agenterr defines the error taxonomy surfaced by generation agents
// and consumed by the orchestrator's retry policy.
package agenterr

import "fmt"

// Stage identifies which pipeline stage produced the error.
type Stage string

const (
	StageCodeGeneration Stage = "code_generation"
	StageDocGeneration  Stage = "doc_generation"
)

// Kind classifies the failure for retry purposes.
type Kind string

const (
	// KindTimeout is transient: the provider call was cancelled or timed out.
	KindTimeout Kind = "timeout"
	// KindMalformedOutput is retryable: generation is non-deterministic,
	// so a resubmission may produce parseable output.
	KindMalformedOutput Kind = "malformed_output"
	// KindProviderRejected is non-retryable: the provider refused the request.
	KindProviderRejected Kind = "provider_rejected"
)

// Retryable reports whether the orchestrator may retry after this kind of failure.
func (k Kind) Retryable() bool {
	return k == KindTimeout || k == KindMalformedOutput
}

// Error records one failed generation attempt. It is transient: the
// orchestrator either resolves it through a retry or surfaces it in the
// final bundle's error list.
type Error struct {
	Stage   Stage  `json:"stage"`
	Kind    Kind   `json:"kind"`
	Attempt int    `json:"attempt"`
	Cause   error  `json:"-"`
	Message string `json:"message,omitempty"`
}

// New builds an Error for the given stage, kind and attempt.
func New(stage Stage, kind Kind, attempt int, cause error) *Error {
	e := &Error{Stage: stage, Kind: kind, Attempt: attempt, Cause: cause}
	if cause != nil {
		e.Message = cause.Error()
	}
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s attempt %d: %s: %v", e.Stage, e.Attempt, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s attempt %d: %s", e.Stage, e.Attempt, e.Kind)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Cause }
