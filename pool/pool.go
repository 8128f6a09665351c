package pool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/voteflow/voteflow/cache"
	"github.com/voteflow/voteflow/internal/metrics"
	"github.com/voteflow/voteflow/types"
	"github.com/voteflow/voteflow/voting"
)

// SessionSpec describes one voting session for the pool.
type SessionSpec struct {
	// Orchestrator drives the session. Required.
	Orchestrator *voting.Orchestrator

	// Sample is the sampling function for this session. Required.
	Sample voting.SampleFunc

	// Options are forwarded to the Vote call.
	Options []voting.VoteOption

	// Fingerprint optionally identifies the decomposed step for the
	// decision cache. Empty disables caching for this session.
	Fingerprint string

	// CacheTTL overrides the cache's default TTL for this decision.
	CacheTTL time.Duration
}

// SessionResult is the outcome of one session. Exactly one of Winner or
// Err is set; Metrics is always present.
type SessionResult struct {
	Winner  *types.AgentResponse
	Metrics *types.VotingMetrics
	Err     error
}

// AgentPool runs voting sessions under a shared concurrency cap. The
// semaphore is the only state shared across sessions.
type AgentPool struct {
	cfg       types.PoolConfig
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
	decisions cache.DecisionCache
	collector *metrics.Collector
	logger    *zap.Logger
	closed    atomic.Bool

	inFlight     atomic.Int64
	peakInFlight atomic.Int64

	sessions  atomic.Int64
	converged atomic.Int64
	fallback  atomic.Int64
	failed    atomic.Int64
	cacheHits atomic.Int64
}

// Option configures an AgentPool.
type Option func(*AgentPool)

// WithDecisionCache attaches a decision cache.
func WithDecisionCache(c cache.DecisionCache) Option {
	return func(p *AgentPool) { p.decisions = c }
}

// WithCollector attaches a Prometheus collector.
func WithCollector(c *metrics.Collector) Option {
	return func(p *AgentPool) { p.collector = c }
}

// New creates a pool. The configuration is validated up front.
func New(cfg types.PoolConfig, logger *zap.Logger, opts ...Option) (*AgentPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &AgentPool{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger: logger.With(zap.String("component", "agent_pool")),
	}
	if cfg.SampleRPS > 0 {
		burst := cfg.SampleBurst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.SampleRPS), burst)
	}
	for _, opt := range opts {
		opt(p)
	}

	p.logger.Info("agent pool initialized",
		zap.Int("max_concurrent", cfg.MaxConcurrent),
		zap.Float64("sample_rps", cfg.SampleRPS),
		zap.Bool("cache_enabled", p.decisions != nil),
	)

	return p, nil
}

// ExecuteWithVoting runs exactly one voting session through the pool's
// concurrency cap.
func (p *AgentPool) ExecuteWithVoting(ctx context.Context, orch *voting.Orchestrator, sampleFn voting.SampleFunc, opts ...voting.VoteOption) (*types.AgentResponse, *types.VotingMetrics, error) {
	result := p.Execute(ctx, SessionSpec{
		Orchestrator: orch,
		Sample:       sampleFn,
		Options:      opts,
	})
	return result.Winner, result.Metrics, result.Err
}

// Execute runs one session described by spec.
func (p *AgentPool) Execute(ctx context.Context, spec SessionSpec) SessionResult {
	if p.closed.Load() {
		return SessionResult{Err: types.NewError(types.ErrPoolClosed, "pool is closed")}
	}
	if spec.Orchestrator == nil || spec.Sample == nil {
		return SessionResult{Err: types.NewInvalidConfigError("session spec requires an orchestrator and a sample function")}
	}

	if cached, ok := p.lookupDecision(ctx, spec.Fingerprint); ok {
		return cached
	}

	p.sessions.Add(1)
	winner, m, err := spec.Orchestrator.Vote(ctx, p.gate(spec.Sample), spec.Options...)

	switch {
	case err != nil:
		p.failed.Add(1)
	case m.ConsensusAchieved:
		p.converged.Add(1)
	default:
		p.fallback.Add(1)
	}

	if err == nil {
		p.storeDecision(ctx, spec, winner)
	}

	return SessionResult{Winner: winner, Metrics: m, Err: err}
}

// ExecutePipeline launches one independent voting session per spec
// concurrently and returns results in input order (not completion
// order) once all sessions finish. Per-session failures are reported in
// the corresponding SessionResult, never as the call's error.
func (p *AgentPool) ExecutePipeline(ctx context.Context, specs []SessionSpec) ([]SessionResult, error) {
	if p.closed.Load() {
		return nil, types.NewError(types.ErrPoolClosed, "pool is closed")
	}

	results := make([]SessionResult, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			results[i] = p.Execute(gctx, spec)
			// Per-session errors stay in the result slot; returning
			// them here would cancel sibling sessions.
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// gate wraps a sampling function with the pool-wide rate limit and
// semaphore. The semaphore is released on every exit path.
func (p *AgentPool) gate(sampleFn voting.SampleFunc) voting.SampleFunc {
	return func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.sem.Release(1)

		current := p.inFlight.Add(1)
		defer p.inFlight.Add(-1)
		p.recordPeak(current)

		if p.collector != nil {
			p.collector.SampleStarted()
			defer p.collector.SampleFinished()
		}

		return sampleFn(ctx, temperature)
	}
}

func (p *AgentPool) recordPeak(current int64) {
	for {
		peak := p.peakInFlight.Load()
		if current <= peak || p.peakInFlight.CompareAndSwap(peak, current) {
			return
		}
	}
}

func (p *AgentPool) lookupDecision(ctx context.Context, fingerprint string) (SessionResult, bool) {
	if p.decisions == nil || fingerprint == "" {
		return SessionResult{}, false
	}

	winner, err := p.decisions.Get(ctx, fingerprint)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			p.logger.Warn("decision cache lookup failed",
				zap.String("fingerprint", fingerprint),
				zap.Error(err),
			)
		}
		if p.collector != nil {
			p.collector.RecordCacheMiss()
		}
		return SessionResult{}, false
	}

	p.cacheHits.Add(1)
	if p.collector != nil {
		p.collector.RecordCacheHit()
	}

	m := types.NewVotingMetrics(uuid.NewString())
	m.CacheHit = true
	m.ConsensusAchieved = true
	p.logger.Debug("decision served from cache", zap.String("fingerprint", fingerprint))

	return SessionResult{Winner: winner, Metrics: m}, true
}

func (p *AgentPool) storeDecision(ctx context.Context, spec SessionSpec, winner *types.AgentResponse) {
	if p.decisions == nil || spec.Fingerprint == "" {
		return
	}
	if err := p.decisions.Set(ctx, spec.Fingerprint, winner, spec.CacheTTL); err != nil {
		p.logger.Warn("decision cache store failed",
			zap.String("fingerprint", spec.Fingerprint),
			zap.Error(err),
		)
	}
}

// InFlight returns the number of sample calls currently in flight.
func (p *AgentPool) InFlight() int64 {
	return p.inFlight.Load()
}

// Close marks the pool closed; subsequent submissions are rejected.
// Sessions already running are unaffected.
func (p *AgentPool) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.logger.Info("agent pool closed", zap.Int64("sessions", p.sessions.Load()))
}

// Stats contains pool statistics.
type Stats struct {
	Sessions     int64 `json:"sessions"`
	Converged    int64 `json:"converged"`
	Fallback     int64 `json:"fallback"`
	Failed       int64 `json:"failed"`
	CacheHits    int64 `json:"cache_hits"`
	InFlight     int64 `json:"in_flight"`
	PeakInFlight int64 `json:"peak_in_flight"`
}

// Stats returns a snapshot of the pool counters.
func (p *AgentPool) Stats() Stats {
	return Stats{
		Sessions:     p.sessions.Load(),
		Converged:    p.converged.Load(),
		Fallback:     p.fallback.Load(),
		Failed:       p.failed.Load(),
		CacheHits:    p.cacheHits.Load(),
		InFlight:     p.inFlight.Load(),
		PeakInFlight: p.peakInFlight.Load(),
	}
}
