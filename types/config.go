package types

import "time"

// ============================================================
// Voting Configuration Types
// ============================================================

// TemperaturePolicy controls the sampling temperature per round. Round 1
// uses a near-zero "best guess" temperature; later rounds use a higher
// diversifying temperature so repeated errors are not perfectly
// correlated.
type TemperaturePolicy struct {
	BestGuess float64 `yaml:"best_guess" json:"best_guess"`
	Diversify float64 `yaml:"diversify" json:"diversify"`
}

// DefaultTemperaturePolicy returns the standard two-phase policy.
func DefaultTemperaturePolicy() TemperaturePolicy {
	return TemperaturePolicy{
		BestGuess: 0.1,
		Diversify: 0.8,
	}
}

// ForRound returns the temperature for a 1-based voting round.
func (p TemperaturePolicy) ForRound(round int) float64 {
	if round <= 1 {
		return p.BestGuess
	}
	return p.Diversify
}

// VotingConfig configures one voting orchestrator.
type VotingConfig struct {
	// K is the vote margin the leader must hold over the runner-up
	// before a winner is declared. Must be >= 1.
	K int `yaml:"k" json:"k"`

	// MaxRounds bounds the number of sampling rounds per session.
	// Must be >= K, otherwise the margin is unreachable.
	MaxRounds int `yaml:"max_rounds" json:"max_rounds"`

	// Temperature is the per-round temperature policy.
	Temperature TemperaturePolicy `yaml:"temperature" json:"temperature"`

	// SessionTimeout optionally bounds one whole session in wall-clock
	// time. Zero disables the timeout; MaxRounds remains the
	// deterministic cutoff either way.
	SessionTimeout time.Duration `yaml:"session_timeout" json:"session_timeout"`

	// CostPerSample optionally prices one sample call so session
	// metrics report an estimated cost. Zero leaves the estimate unset.
	CostPerSample float64 `yaml:"cost_per_sample" json:"cost_per_sample"`
}

// DefaultVotingConfig returns sensible defaults: a margin of 3 with a
// ten-round budget.
func DefaultVotingConfig() VotingConfig {
	return VotingConfig{
		K:           3,
		MaxRounds:   10,
		Temperature: DefaultTemperaturePolicy(),
	}
}

// Validate checks the configuration invariants. Violations surface as
// INVALID_CONFIG and are never retried.
func (c VotingConfig) Validate() error {
	if c.K < 1 {
		return NewInvalidConfigError("k must be >= 1")
	}
	if c.MaxRounds < c.K {
		return NewInvalidConfigError("max_rounds must be >= k")
	}
	if c.CostPerSample < 0 {
		return NewInvalidConfigError("cost_per_sample must be >= 0")
	}
	return nil
}

// CreepPredicate judges whether content exceeds the task's intended
// scope. Domain-specific and caller-supplied; the core ships no built-in
// vocabulary.
type CreepPredicate func(Content) bool

// RedFlagConfig configures the red-flag detector.
type RedFlagConfig struct {
	// MaxTokens is the estimated-token ceiling for ExcessiveLength.
	// Zero disables the length check.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// MinConfidence is the floor for ConfidenceTooLow.
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`

	// RequiredFields lists field names structured content must carry.
	RequiredFields []string `yaml:"required_fields" json:"required_fields,omitempty"`

	// Creep optionally flags out-of-scope content (MethodologyCreep).
	Creep CreepPredicate `yaml:"-" json:"-"`
}

// DefaultRedFlagConfig returns defaults matching a short extraction step.
func DefaultRedFlagConfig() RedFlagConfig {
	return RedFlagConfig{
		MaxTokens:     2000,
		MinConfidence: 0.3,
	}
}

// Validate checks the detector thresholds.
func (c RedFlagConfig) Validate() error {
	if c.MaxTokens < 0 {
		return NewInvalidConfigError("max_tokens must be >= 0")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return NewInvalidConfigError("min_confidence must be in [0, 1]")
	}
	return nil
}

// PoolConfig configures the bounded-concurrency agent pool.
type PoolConfig struct {
	// MaxConcurrent caps the number of simultaneous in-flight sample
	// calls across the entire pool.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`

	// SampleRPS optionally rate-limits sample calls pool-wide
	// (provider QPS protection). Zero disables the limiter.
	SampleRPS float64 `yaml:"sample_rps" json:"sample_rps"`

	// SampleBurst is the limiter burst size when SampleRPS is set.
	SampleBurst int `yaml:"sample_burst" json:"sample_burst"`
}

// DefaultPoolConfig returns the default pool sizing.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConcurrent: 10,
		SampleBurst:   1,
	}
}

// Validate checks the pool sizing invariants.
func (c PoolConfig) Validate() error {
	if c.MaxConcurrent < 1 {
		return NewInvalidConfigError("max_concurrent must be >= 1")
	}
	if c.SampleRPS < 0 {
		return NewInvalidConfigError("sample_rps must be >= 0")
	}
	return nil
}
