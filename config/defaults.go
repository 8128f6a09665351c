package config

import (
	"github.com/voteflow/voteflow/cache"
	"github.com/voteflow/voteflow/types"
)

// DefaultConfig returns the full default configuration. Defaults favor a
// short extraction step voted with a margin of 3.
func DefaultConfig() *Config {
	return &Config{
		Voting:    types.DefaultVotingConfig(),
		RedFlags:  types.DefaultRedFlagConfig(),
		Pool:      types.DefaultPoolConfig(),
		Cache:     DefaultCacheConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultCacheConfig returns a disabled cache pointing at a local redis.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: false,
		Redis:   cache.DefaultRedisConfig(),
	}
}

// DefaultLogConfig returns JSON logging at info level.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}

// DefaultTelemetryConfig returns telemetry disabled with full sampling
// once enabled.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "voteflow",
		SampleRate:   1.0,
	}
}
