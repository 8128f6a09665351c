package types

import "time"

// VotingMetrics accumulates the outcome of one voting session. It is
// owned exclusively by its session and finalized once, at session end;
// it is never shared across sessions.
type VotingMetrics struct {
	SessionID string `json:"session_id"`

	TotalSamples   int `json:"total_samples"`
	ValidSamples   int `json:"valid_samples"`
	InvalidSamples int `json:"invalid_samples"`
	VotingRounds   int `json:"voting_rounds"`

	ConsensusAchieved bool `json:"consensus_achieved"`
	CacheHit          bool `json:"cache_hit,omitempty"`

	WinnerVotes   int `json:"winner_votes"`
	RunnerUpVotes int `json:"runner_up_votes"`

	RedFlagsByType map[RedFlag]int `json:"red_flags_by_type,omitempty"`

	TokensUsed    int           `json:"tokens_used"`
	EstimatedCost float64       `json:"estimated_cost,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// NewVotingMetrics creates an empty accumulator for one session.
func NewVotingMetrics(sessionID string) *VotingMetrics {
	return &VotingMetrics{
		SessionID:      sessionID,
		RedFlagsByType: make(map[RedFlag]int),
	}
}

// RecordValid tallies one counted sample.
func (m *VotingMetrics) RecordValid(resp *AgentResponse) {
	m.TotalSamples++
	m.ValidSamples++
	m.TokensUsed += resp.TokensUsed
}

// RecordInvalid tallies one flagged or failed sample along with its
// per-flag counters.
func (m *VotingMetrics) RecordInvalid(resp *AgentResponse) {
	m.TotalSamples++
	m.InvalidSamples++
	if resp == nil {
		return
	}
	m.TokensUsed += resp.TokensUsed
	for _, f := range resp.RedFlags {
		m.RedFlagsByType[f]++
	}
}

// Lead returns the current winner-over-runner-up margin.
func (m *VotingMetrics) Lead() int {
	return m.WinnerVotes - m.RunnerUpVotes
}
