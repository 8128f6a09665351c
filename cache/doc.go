// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

// Package cache provides an optional decision cache for the agent
// pool. Settled winners are stored under a caller-supplied step
// fingerprint so re-running a decomposed pipeline skips steps that
// already reached a decision. A redis-backed store covers shared
// deployments; an in-memory store covers single-process use and tests.
package cache
