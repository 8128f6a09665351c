package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVotingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     VotingConfig
		wantErr bool
	}{
		{name: "defaults are valid", cfg: DefaultVotingConfig(), wantErr: false},
		{name: "k below one", cfg: VotingConfig{K: 0, MaxRounds: 5}, wantErr: true},
		{name: "max_rounds below k", cfg: VotingConfig{K: 3, MaxRounds: 2}, wantErr: true},
		{name: "max_rounds equal to k", cfg: VotingConfig{K: 3, MaxRounds: 3}, wantErr: false},
		{name: "negative cost per sample", cfg: VotingConfig{K: 2, MaxRounds: 5, CostPerSample: -0.01}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.True(t, IsErrorCode(err, ErrInvalidConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTemperaturePolicyForRound(t *testing.T) {
	p := DefaultTemperaturePolicy()
	assert.Equal(t, p.BestGuess, p.ForRound(1))
	assert.Equal(t, p.Diversify, p.ForRound(2))
	assert.Equal(t, p.Diversify, p.ForRound(100))
}

func TestRedFlagConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultRedFlagConfig().Validate())
	assert.Error(t, RedFlagConfig{MinConfidence: 1.5}.Validate())
	assert.Error(t, RedFlagConfig{MaxTokens: -1}.Validate())
}

func TestPoolConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultPoolConfig().Validate())
	assert.Error(t, PoolConfig{MaxConcurrent: 0}.Validate())
	assert.Error(t, PoolConfig{MaxConcurrent: 2, SampleRPS: -1}.Validate())
}
