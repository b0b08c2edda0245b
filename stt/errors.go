package stt

import (
	"errors"
	"fmt"
)

// Common errors for transcription services.
var (
	// ErrEmptyAudio is returned when the audio segment is empty.
	ErrEmptyAudio = errors.New("audio data is empty")

	// ErrEmptyTranscript is returned when a provider succeeds but produces an
	// empty or whitespace-only transcript.
	ErrEmptyTranscript = errors.New("provider returned empty transcript")

	// ErrNotConfigured is returned when no provider credential is configured.
	ErrNotConfigured = errors.New("no transcription providers configured")

	// ErrAllProvidersFailed is returned when every attempted provider failed
	// or returned an empty transcript.
	ErrAllProvidersFailed = errors.New("all transcription providers failed")

	// ErrRateLimited is returned when a provider rate limits requests.
	ErrRateLimited = errors.New("rate limited by provider")
)

// TranscriptionError represents an error from one provider attempt.
type TranscriptionError struct {
	// Provider is the transcription provider name.
	Provider string

	// Code is the provider-specific error code or HTTP status.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Retryable indicates whether the same request can be retried.
	Retryable bool
}

// NewTranscriptionError creates a new TranscriptionError.
func NewTranscriptionError(provider, code, message string, cause error, retryable bool) *TranscriptionError {
	return &TranscriptionError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}

// Error implements the error interface.
func (e *TranscriptionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s transcription error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s transcription error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is.
func (e *TranscriptionError) Is(target error) bool {
	if e.Cause != nil && errors.Is(e.Cause, target) {
		return true
	}
	t, ok := target.(*TranscriptionError)
	if !ok {
		return false
	}
	return e.Provider == t.Provider && e.Code == t.Code
}
