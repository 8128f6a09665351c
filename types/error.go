package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the voting core.
type ErrorCode string

// Surfaced error codes. Exactly these escape a Vote call; per-sample
// failures are absorbed into metrics instead.
const (
	// ErrInvalidConfig marks an impossible configuration (k < 1,
	// max_rounds < k, estimator called with p <= 0.5). Never retried.
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrNoConsensus marks a session that exhausted max_rounds with
	// zero valid samples ever counted.
	ErrNoConsensus ErrorCode = "NO_CONSENSUS"

	// ErrPoolClosed marks a submission to a closed pool.
	ErrPoolClosed ErrorCode = "POOL_CLOSED"
)

// Absorbed error codes. These appear only as causes inside metrics and
// logs, never as the outcome of a session.
const (
	// ErrGenerationFailure marks a sampling function that returned an
	// error; converted into a FormatError-flagged invalid sample.
	ErrGenerationFailure ErrorCode = "GENERATION_FAILURE"

	// ErrInvalidSample marks a sample disqualified by the detector.
	ErrInvalidSample ErrorCode = "INVALID_SAMPLE"
)

// Error is a structured error with a code, message, and optional cause.
// NO_CONSENSUS errors additionally carry the session's accumulated
// metrics for diagnostics.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Metrics *VotingMetrics `json:"metrics,omitempty"`
	Cause   error          `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithMetrics attaches the session metrics accumulated so far.
func (e *Error) WithMetrics(m *VotingMetrics) *Error {
	e.Metrics = m
	return e
}

// NewInvalidConfigError creates an INVALID_CONFIG error.
func NewInvalidConfigError(message string) *Error {
	return NewError(ErrInvalidConfig, message)
}

// NewNoConsensusError creates a NO_CONSENSUS error carrying the
// session's metrics.
func NewNoConsensusError(m *VotingMetrics) *Error {
	return NewError(ErrNoConsensus, "no valid samples observed before max_rounds").WithMetrics(m)
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether the error chain carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
