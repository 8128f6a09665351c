// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

// Package config loads the voting engine configuration from defaults, an
// optional YAML file, and environment variable overrides, in that order.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("voteflow.yaml").
//	    WithEnvPrefix("VOTEFLOW").
//	    Load()
//
// Environment keys are derived from the yaml tags of the nested structs,
// so VOTEFLOW_VOTING_K overrides voting.k and VOTEFLOW_CACHE_REDIS_ADDR
// overrides cache.redis.addr.
package config
