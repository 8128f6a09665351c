// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

/*
Package voting implements the consensus core: a red-flag quality gate
and a sequential first-to-ahead-by-k voting orchestrator.

One Vote call drives rounds of sampling against a caller-supplied
sampling function. Each sample passes through the Detector; unflagged
samples are grouped under a canonical vote key and tallied. The session
converges as soon as the leading key's count exceeds the runner-up's by
the configured margin k, and falls back to plain plurality when the
round budget is exhausted. With a per-sample correct-vote probability
above one half, the chance of committing a wrong answer shrinks
geometrically in k, independent of how many distinct wrong candidates
appear.

Rounds within one session are strictly sequential; parallelism across
independent sessions lives one layer up, in package pool.
*/
package voting
