// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

// Package tokenizer provides token counting for the red-flag length
// gate. A tiktoken-backed counter covers OpenAI-family models; a
// character-ratio estimator serves everything else.
package tokenizer
