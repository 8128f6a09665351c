package voting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/voteflow/voteflow/internal/metrics"
	"github.com/voteflow/voteflow/internal/telemetry"
	"github.com/voteflow/voteflow/types"
)

// SampleFunc requests one sample at the given temperature. It may fail;
// failures are absorbed as FormatError-flagged invalid samples. It must
// be safe to invoke repeatedly and independently.
type SampleFunc func(ctx context.Context, temperature float64) (*types.AgentResponse, error)

// ValidateFunc deterministically checks that a sample's raw content
// parsed into a usable answer. A non-nil error marks the sample as
// unparsable (FormatError) without aborting the session.
type ValidateFunc func(*types.AgentResponse) error

// Orchestrator drives one voting session per Vote call: sequential
// sampling rounds, red-flag filtering, canonical tallying, and the
// first-to-ahead-by-k stopping rule. It holds no per-session state and
// is safe for concurrent Vote calls.
type Orchestrator struct {
	cfg         types.VotingConfig
	detector    *Detector
	logger      *zap.Logger
	collector   *metrics.Collector
	tracer      trace.Tracer
	instruments *telemetry.SessionInstruments
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCollector attaches a Prometheus collector.
func WithCollector(c *metrics.Collector) Option {
	return func(o *Orchestrator) { o.collector = c }
}

// NewOrchestrator creates an orchestrator. The configuration is
// validated up front; k < 1 or max_rounds < k is rejected with
// INVALID_CONFIG. A nil detector gets the default thresholds.
func NewOrchestrator(cfg types.VotingConfig, detector *Detector, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if detector == nil {
		detector = NewDetector(types.DefaultRedFlagConfig(), nil, nil)
	}

	instruments, err := telemetry.NewSessionInstruments()
	if err != nil {
		return nil, fmt.Errorf("create session instruments: %w", err)
	}

	o := &Orchestrator{
		cfg:         cfg,
		detector:    detector,
		logger:      zap.NewNop(),
		tracer:      otel.Tracer("github.com/voteflow/voteflow/voting"),
		instruments: instruments,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("component", "voting_orchestrator"))
	return o, nil
}

// Config returns the orchestrator's voting configuration.
func (o *Orchestrator) Config() types.VotingConfig {
	return o.cfg
}

// VoteOption configures one Vote call.
type VoteOption func(*voteSettings)

type voteSettings struct {
	keyFn    VoteKeyFunc
	validate ValidateFunc
}

// WithVoteKeyFunc overrides the canonical vote-key function for this
// call.
func WithVoteKeyFunc(fn VoteKeyFunc) VoteOption {
	return func(s *voteSettings) {
		if fn != nil {
			s.keyFn = fn
		}
	}
}

// WithValidateFunc attaches a parse check applied before the red-flag
// gate; failures count as FormatError samples.
func WithValidateFunc(fn ValidateFunc) VoteOption {
	return func(s *voteSettings) { s.validate = fn }
}

// Vote runs one voting session to a decision. The externally visible
// outcome is exactly one of: a winning response plus metrics, or a
// NO_CONSENSUS error carrying the accumulated metrics (only when zero
// valid samples were ever counted).
func (o *Orchestrator) Vote(ctx context.Context, sampleFn SampleFunc, opts ...VoteOption) (*types.AgentResponse, *types.VotingMetrics, error) {
	settings := voteSettings{keyFn: DefaultVoteKey}
	for _, opt := range opts {
		opt(&settings)
	}

	start := time.Now()
	sessionID := uuid.NewString()
	m := types.NewVotingMetrics(sessionID)
	logger := o.logger.With(zap.String("session_id", sessionID))

	if o.cfg.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.SessionTimeout)
		defer cancel()
	}

	ctx, span := o.tracer.Start(ctx, "voting.vote", trace.WithAttributes(
		attribute.String("voting.session_id", sessionID),
		attribute.Int("voting.k", o.cfg.K),
		attribute.Int("voting.max_rounds", o.cfg.MaxRounds),
	))
	defer span.End()

	o.instruments.SessionStarted(ctx)

	t := newTally()

	for round := 1; round <= o.cfg.MaxRounds; round++ {
		if ctx.Err() != nil {
			logger.Warn("session interrupted, using accumulated votes",
				zap.Int("round", round),
				zap.Error(ctx.Err()),
			)
			break
		}
		m.VotingRounds = round

		resp, err := sampleFn(ctx, o.cfg.Temperature.ForRound(round))
		if err != nil {
			if ctx.Err() != nil {
				// Timed out mid-call; the in-flight sample is abandoned.
				break
			}
			if resp == nil {
				resp = &types.AgentResponse{}
			}
			resp.AddFlag(types.FlagFormatError)
			o.recordInvalid(m, resp)
			logger.Debug("sample generation failed",
				zap.Int("round", round),
				zap.Error(err),
			)
			continue
		}
		if resp == nil {
			resp = &types.AgentResponse{RedFlags: []types.RedFlag{types.FlagFormatError}}
			o.recordInvalid(m, resp)
			continue
		}

		if settings.validate != nil {
			if verr := settings.validate(resp); verr != nil {
				resp.AddFlag(types.FlagFormatError)
				o.recordInvalid(m, resp)
				logger.Debug("sample failed validation",
					zap.Int("round", round),
					zap.Error(verr),
				)
				continue
			}
		}

		if flags := o.detector.Detect(resp); len(flags) > 0 {
			o.recordInvalid(m, resp)
			logger.Debug("sample red-flagged",
				zap.Int("round", round),
				zap.Any("flags", flags),
			)
			continue
		}

		key, kerr := settings.keyFn(resp.Content)
		if kerr != nil {
			resp.AddFlag(types.FlagFormatError)
			o.recordInvalid(m, resp)
			logger.Debug("vote key computation failed",
				zap.Int("round", round),
				zap.Error(kerr),
			)
			continue
		}

		m.RecordValid(resp)
		if o.collector != nil {
			o.collector.RecordSample(true)
		}
		t.add(key, resp)

		n1, n2 := t.topTwo()
		if n1-n2 >= o.cfg.K {
			m.ConsensusAchieved = true
			m.WinnerVotes, m.RunnerUpVotes = n1, n2
			o.finalize(m, start)
			o.finishSession(ctx, metrics.StatusConverged, m)
			span.SetAttributes(
				attribute.Int("voting.rounds", m.VotingRounds),
				attribute.Bool("voting.converged", true),
			)
			logger.Info("consensus reached",
				zap.Int("rounds", m.VotingRounds),
				zap.Int("winner_votes", n1),
				zap.Int("runner_up_votes", n2),
			)
			return t.winner(), m, nil
		}
	}

	o.finalize(m, start)
	span.SetAttributes(
		attribute.Int("voting.rounds", m.VotingRounds),
		attribute.Bool("voting.converged", false),
	)

	if m.ValidSamples == 0 {
		o.finishSession(ctx, metrics.StatusFailed, m)
		err := types.NewNoConsensusError(m)
		span.RecordError(err)
		logger.Warn("session failed, no valid samples",
			zap.Int("rounds", m.VotingRounds),
			zap.Int("invalid_samples", m.InvalidSamples),
		)
		return nil, m, err
	}

	// Round budget exhausted without the margin; fall back to plain
	// plurality over what was counted.
	n1, n2 := t.topTwo()
	m.WinnerVotes, m.RunnerUpVotes = n1, n2
	o.finishSession(ctx, metrics.StatusFallback, m)
	logger.Info("fallback to plurality",
		zap.Int("rounds", m.VotingRounds),
		zap.Int("winner_votes", n1),
		zap.Int("runner_up_votes", n2),
	)
	return t.winner(), m, nil
}

// finalize stamps the session duration and, when a per-sample price is
// configured, the estimated cost of everything sampled (valid and
// invalid draws both spend money).
func (o *Orchestrator) finalize(m *types.VotingMetrics, start time.Time) {
	m.Duration = time.Since(start)
	if o.cfg.CostPerSample > 0 {
		m.EstimatedCost = float64(m.TotalSamples) * o.cfg.CostPerSample
	}
}

func (o *Orchestrator) recordInvalid(m *types.VotingMetrics, resp *types.AgentResponse) {
	m.RecordInvalid(resp)
	if o.collector == nil {
		return
	}
	o.collector.RecordSample(false)
	for _, f := range resp.RedFlags {
		o.collector.RecordRedFlag(f.String())
	}
}

func (o *Orchestrator) finishSession(ctx context.Context, status string, m *types.VotingMetrics) {
	o.instruments.SessionEnded(ctx, status, m)
	if o.collector == nil {
		return
	}
	o.collector.RecordSession(status, m.VotingRounds, m.Duration)
}

// tally tracks vote counts and the retained best instance per key.
// Owned exclusively by one Vote call; no locking required.
type tally struct {
	counts map[string]int
	best   map[string]*types.AgentResponse

	// leader is the first key to have reached the current maximum
	// count, which makes the plurality fallback tie-break
	// deterministic.
	leader string
	max    int
}

func newTally() *tally {
	return &tally{
		counts: make(map[string]int),
		best:   make(map[string]*types.AgentResponse),
	}
}

func (t *tally) add(key string, resp *types.AgentResponse) {
	t.counts[key]++

	// Retain the highest-confidence instance among equivalent votes.
	if cur, ok := t.best[key]; !ok || resp.Confidence > cur.Confidence {
		t.best[key] = resp
	}

	if t.counts[key] > t.max {
		t.max = t.counts[key]
		t.leader = key
	}
}

// topTwo returns the leading count and the runner-up count (0 when only
// one distinct key exists).
func (t *tally) topTwo() (n1, n2 int) {
	n1 = t.max
	for key, count := range t.counts {
		if key != t.leader && count > n2 {
			n2 = count
		}
	}
	return n1, n2
}

func (t *tally) winner() *types.AgentResponse {
	return t.best[t.leader]
}
