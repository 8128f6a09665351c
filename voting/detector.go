package voting

import (
	"strings"

	"go.uber.org/zap"

	"github.com/voteflow/voteflow/tokenizer"
	"github.com/voteflow/voteflow/types"
)

// Detector is the red-flag quality gate. Checks are independent and all
// evaluated, so a response can carry several flags simultaneously. Any
// non-empty flag set disqualifies the response from voting.
type Detector struct {
	cfg     types.RedFlagConfig
	counter tokenizer.Counter
	logger  *zap.Logger
}

// NewDetector creates a detector. A nil counter falls back to the
// character estimator; a nil logger is replaced with a noop logger.
func NewDetector(cfg types.RedFlagConfig, counter tokenizer.Counter, logger *zap.Logger) *Detector {
	if counter == nil {
		counter = tokenizer.NewEstimator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		cfg:     cfg,
		counter: counter,
		logger:  logger.With(zap.String("component", "redflag_detector")),
	}
}

// Detect evaluates every check against the response, attaches the
// resulting flags to it, and returns them. FormatError is never
// produced here; it is attached by the orchestrator when generation or
// parsing fails.
func (d *Detector) Detect(resp *types.AgentResponse) []types.RedFlag {
	flags := make([]types.RedFlag, 0, 2)

	if d.cfg.MaxTokens > 0 {
		estimated, err := d.counter.CountTokens(resp.Content.String())
		if err != nil {
			d.logger.Debug("token count failed, skipping length check", zap.Error(err))
		} else if estimated > d.cfg.MaxTokens {
			flags = append(flags, types.FlagExcessiveLength)
		}
	}

	if resp.Confidence < d.cfg.MinConfidence {
		flags = append(flags, types.FlagConfidenceTooLow)
	}

	if resp.Content.Kind == types.ContentStructured {
		for _, name := range d.cfg.RequiredFields {
			if !resp.Content.HasField(name) {
				flags = append(flags, types.FlagMissingRequiredFields)
				break
			}
		}
	}

	if d.cfg.Creep != nil && d.cfg.Creep(resp.Content) {
		flags = append(flags, types.FlagMethodologyCreep)
	}

	for _, f := range flags {
		resp.AddFlag(f)
	}
	return flags
}

// KeywordCreepPredicate builds a methodology-creep predicate from a
// keyword list: content containing any keyword (case-insensitive) is
// flagged as exceeding the task's scope. The core ships no vocabulary;
// callers decide what counts as creep for their domain.
func KeywordCreepPredicate(keywords []string) types.CreepPredicate {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return func(c types.Content) bool {
		text := strings.ToLower(c.String())
		for _, kw := range lowered {
			if kw != "" && strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}
