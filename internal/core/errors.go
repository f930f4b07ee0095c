package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// Predefined Error Values
// =============================================================================

var (
	ErrRateLimited  = errors.New("rate limited")
	ErrTimeout      = errors.New("operation timed out")
	ErrNoAPIKey     = errors.New("API key not configured")
	ErrInvalidInput = errors.New("invalid input")
	ErrNetworkError = errors.New("network error")
	ErrServerError  = errors.New("server error")
)

// =============================================================================
// Phase Error Types
// =============================================================================

// GenerationError reports that the text-generation capability could not
// produce a valid generation-step result: a transport failure or a response
// that did not decode into the expected structure.
type GenerationError struct {
	Phase         string // "architect", "narrator", "editor", "character"
	BeatReference string // empty for phases not tied to a beat
	Cause         error
}

func (e *GenerationError) Error() string {
	if e.BeatReference != "" {
		return fmt.Sprintf("%s generation failed for %s: %v", e.Phase, e.BeatReference, e.Cause)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Phase, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// EvaluationError reports a failure of the continuity evaluation/revision
// step, including which of the fixed revision rounds failed.
type EvaluationError struct {
	BeatReference string
	Round         int // 1-based revision round
	Cause         error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation round %d failed for %s: %v", e.Round, e.BeatReference, e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// Error Classification
// =============================================================================

// IsRetryable reports whether an error is transient at the transport layer.
// Retry policy lives in the agent client; the story phases never retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrNetworkError) ||
		errors.Is(err, ErrServerError)
}

// IsGenerationError checks if an error is a generation-step failure.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsEvaluationError checks if an error is an evaluation-step failure.
func IsEvaluationError(err error) bool {
	var evalErr *EvaluationError
	return errors.As(err, &evalErr)
}
