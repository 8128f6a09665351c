// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

// Package estimate provides closed-form sizing utilities for voting
// sessions: the minimum margin k needed for a target end-to-end success
// probability, and the expected total sampling cost. Both are pure
// functions usable without constructing an orchestrator.
package estimate

import (
	"math"

	"github.com/voteflow/voteflow/types"
)

// DefaultTarget is the overall success probability used when the caller
// does not specify one.
const DefaultTarget = 0.95

// KMin returns the minimum integer margin k such that a task decomposed
// into s independently voted sequential steps, each with per-sample
// correct-vote probability p, achieves overall success probability of
// at least t.
//
// The stopping rule is a gambler's-ruin hitting problem: with p > 0.5
// the probability of the wrong candidate ever taking a k-lead shrinks
// geometrically in k, which gives the closed form
//
//	k_min = ceil( ln(t^(-1/s) - 1) / ln((1-p)/p) )
//
// clamped to a minimum of 1. For p <= 0.5 voting cannot converge toward
// the correct answer and the formula is undefined; this is reported as
// INVALID_CONFIG rather than a misleadingly small k.
func KMin(p float64, s int, t float64) (int, error) {
	if p <= 0.5 {
		return 0, types.NewInvalidConfigError("per-sample success probability must exceed 0.5")
	}
	if p > 1 {
		return 0, types.NewInvalidConfigError("per-sample success probability must be <= 1")
	}
	if s < 1 {
		return 0, types.NewInvalidConfigError("step count must be >= 1")
	}
	if t <= 0 || t >= 1 {
		return 0, types.NewInvalidConfigError("target probability must be in (0, 1)")
	}

	if p == 1 {
		// Every sample votes correctly; a margin of 1 suffices.
		return 1, nil
	}

	perStep := math.Pow(t, -1.0/float64(s))
	if perStep-1 <= 0 {
		// For huge s the per-step requirement rounds to exactly 1 in
		// float64 and the log argument collapses to zero. The honest
		// answer is an unbounded margin, not a clamped k of 1.
		return 0, types.NewInvalidConfigError("step count too large for the target probability")
	}

	numerator := math.Log(perStep - 1)
	denominator := math.Log((1 - p) / p)

	k := int(math.Ceil(numerator / denominator))
	if k < 1 {
		k = 1
	}
	return k, nil
}

// Cost returns the expected total sampling cost of a task with s
// sequential steps: s * k * costPerSample / p, where the 1/p factor
// accounts for samples wasted on invalid or flagged draws. A
// non-positive k is derived via KMin first; a non-positive t falls back
// to DefaultTarget.
func Cost(p float64, s int, costPerSample float64, k int, t float64) (float64, error) {
	if costPerSample < 0 {
		return 0, types.NewInvalidConfigError("cost per sample must be >= 0")
	}
	if t <= 0 {
		t = DefaultTarget
	}
	if k <= 0 {
		derived, err := KMin(p, s, t)
		if err != nil {
			return 0, err
		}
		k = derived
	} else if p <= 0.5 || p > 1 {
		return 0, types.NewInvalidConfigError("per-sample success probability must be in (0.5, 1]")
	} else if s < 1 {
		return 0, types.NewInvalidConfigError("step count must be >= 1")
	}

	return float64(s) * float64(k) * costPerSample / p, nil
}
