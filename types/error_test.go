package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormat(t *testing.T) {
	err := NewError(ErrInvalidConfig, "k must be >= 1")
	assert.Equal(t, "[INVALID_CONFIG] k must be >= 1", err.Error())

	cause := errors.New("boom")
	err = NewError(ErrGenerationFailure, "sample failed").WithCause(cause)
	assert.Contains(t, err.Error(), "GENERATION_FAILURE")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrNoConsensus, GetErrorCode(NewNoConsensusError(nil)))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))

	// Code is found through wrapping.
	wrapped := fmt.Errorf("session: %w", NewInvalidConfigError("bad"))
	assert.True(t, IsErrorCode(wrapped, ErrInvalidConfig))
	assert.False(t, IsErrorCode(wrapped, ErrNoConsensus))
}

func TestNoConsensusCarriesMetrics(t *testing.T) {
	m := NewVotingMetrics("s1")
	m.RecordInvalid(&AgentResponse{RedFlags: []RedFlag{FlagFormatError}})

	err := NewNoConsensusError(m)
	assert.Equal(t, m, err.Metrics)
	assert.Equal(t, 1, err.Metrics.InvalidSamples)
	assert.Equal(t, 0, err.Metrics.ValidSamples)
}
