// Package voteflow provides a top-level convenience entry point for
// running voting sessions with minimal boilerplate.
//
// Usage:
//
//	import "github.com/voteflow/voteflow"
//
//	orch, err := voteflow.New(voteflow.WithK(3))
//	winner, m, err := orch.Vote(ctx, sampleFn)
//
// This is a thin wrapper around [voting.NewOrchestrator] with the
// default red-flag thresholds; import the voting package directly when
// you need a custom detector or collector.
package voteflow

import (
	"go.uber.org/zap"

	"github.com/voteflow/voteflow/types"
	"github.com/voteflow/voteflow/voting"
)

// Option configures the orchestrator created by [New].
type Option func(*settings)

type settings struct {
	cfg    types.VotingConfig
	flags  types.RedFlagConfig
	logger *zap.Logger
}

// WithK sets the vote margin required to declare a winner.
func WithK(k int) Option {
	return func(s *settings) { s.cfg.K = k }
}

// WithMaxRounds sets the round budget per session.
func WithMaxRounds(n int) Option {
	return func(s *settings) { s.cfg.MaxRounds = n }
}

// WithVotingConfig replaces the whole voting configuration.
func WithVotingConfig(cfg types.VotingConfig) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithRedFlagConfig replaces the red-flag thresholds.
func WithRedFlagConfig(cfg types.RedFlagConfig) Option {
	return func(s *settings) { s.flags = cfg }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New creates a voting orchestrator with default configuration, adjusted
// by the given options.
func New(opts ...Option) (*voting.Orchestrator, error) {
	s := settings{
		cfg:    types.DefaultVotingConfig(),
		flags:  types.DefaultRedFlagConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	detector := voting.NewDetector(s.flags, nil, s.logger)
	return voting.NewOrchestrator(s.cfg, detector, voting.WithLogger(s.logger))
}
