package types

// RedFlag is a quality signal that disqualifies one sample from voting
// without being treated as a hard error. A response may carry several
// flags simultaneously.
type RedFlag string

const (
	// FlagExcessiveLength marks content whose estimated token count
	// exceeds the configured maximum.
	FlagExcessiveLength RedFlag = "excessive_length"

	// FlagFormatError marks a sample whose generation failed or whose
	// raw output could not be parsed. It is attached by the caller or
	// the orchestrator, never computed from content heuristics.
	FlagFormatError RedFlag = "format_error"

	// FlagMethodologyCreep marks content that exceeds the task's
	// intended scope, as judged by a caller-supplied predicate.
	FlagMethodologyCreep RedFlag = "methodology_creep"

	// FlagMissingRequiredFields marks structured content missing one or
	// more caller-required field names.
	FlagMissingRequiredFields RedFlag = "missing_required_fields"

	// FlagConfidenceTooLow marks a response below the configured
	// minimum confidence.
	FlagConfidenceTooLow RedFlag = "confidence_too_low"
)

// AllRedFlags lists every flag variant, in a stable order. Used by the
// metrics collector to pre-register per-flag counters.
func AllRedFlags() []RedFlag {
	return []RedFlag{
		FlagExcessiveLength,
		FlagFormatError,
		FlagMethodologyCreep,
		FlagMissingRequiredFields,
		FlagConfidenceTooLow,
	}
}

func (f RedFlag) String() string {
	return string(f)
}
