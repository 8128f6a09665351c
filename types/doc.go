// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

/*
Package types provides the shared type definitions for the VoteFlow
voting core.

types is the bottom-most public package and depends on no other package
in the module. It defines the contracts shared by the voting,
pool, estimate, and config packages:

  - Content           — tagged variant for sampled output (Scalar | Structured)
  - AgentResponse     — one sampled answer with confidence and red flags
  - RedFlag           — quality-gate flag variants
  - VotingConfig      — margin threshold, round budget, temperature policy
  - RedFlagConfig     — detector thresholds and the pluggable creep predicate
  - PoolConfig        — shared concurrency cap and optional rate limit
  - VotingMetrics     — per-session accumulator returned with every outcome
  - Error / ErrorCode — structured error taxonomy (surfaced vs absorbed)
*/
package types
