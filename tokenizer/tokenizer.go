package tokenizer

// Counter is the token counting interface consumed by the red-flag
// detector. Implementations must be safe for concurrent use.
type Counter interface {
	// CountTokens returns the token count for the given text.
	CountTokens(text string) (int, error)

	// Name returns the counter's name.
	Name() string
}

// ForModel returns a tiktoken-backed counter when the model is an
// OpenAI-family model, falling back to the character estimator.
func ForModel(model string) Counter {
	if t, err := NewTiktokenCounter(model); err == nil {
		return t
	}
	return NewEstimator()
}
