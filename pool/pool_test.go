package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voteflow/voteflow/cache"
	"github.com/voteflow/voteflow/types"
	"github.com/voteflow/voteflow/voting"
)

func scalarResponse(text string, confidence float64) *types.AgentResponse {
	return &types.AgentResponse{
		Content:    types.ScalarContent(text),
		Confidence: confidence,
	}
}

func newTestOrchestrator(t *testing.T, k, maxRounds int) *voting.Orchestrator {
	t.Helper()
	orch, err := voting.NewOrchestrator(types.VotingConfig{
		K:           k,
		MaxRounds:   maxRounds,
		Temperature: types.DefaultTemperaturePolicy(),
	}, nil)
	require.NoError(t, err)
	return orch
}

func constantSampler(text string) voting.SampleFunc {
	return func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
		return scalarResponse(text, 0.9), nil
	}
}

func TestExecuteWithVoting(t *testing.T) {
	p, err := New(types.PoolConfig{MaxConcurrent: 4}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	orch := newTestOrchestrator(t, 2, 10)
	winner, m, err := p.ExecuteWithVoting(context.Background(), orch, constantSampler("42"))
	require.NoError(t, err)
	assert.Equal(t, "42", winner.Content.Text)
	assert.True(t, m.ConsensusAchieved)
	assert.Equal(t, 2, m.ValidSamples)
	assert.Equal(t, int64(0), p.InFlight())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(types.PoolConfig{MaxConcurrent: 0}, nil)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfig))
}

func TestConcurrencyCap(t *testing.T) {
	const maxConcurrent = 2
	const sessions = 5

	p, err := New(types.PoolConfig{MaxConcurrent: maxConcurrent}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	var inFlight, maxObserved atomic.Int64
	sample := func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			peak := maxObserved.Load()
			if cur <= peak || maxObserved.CompareAndSwap(peak, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return scalarResponse("ok", 0.9), nil
	}

	specs := make([]SessionSpec, sessions)
	for i := range specs {
		specs[i] = SessionSpec{
			Orchestrator: newTestOrchestrator(t, 1, 3),
			Sample:       sample,
		}
	}

	results, err := p.ExecutePipeline(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, results, sessions)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	assert.LessOrEqual(t, maxObserved.Load(), int64(maxConcurrent),
		"observed %d simultaneous sample calls with a cap of %d", maxObserved.Load(), maxConcurrent)
	assert.LessOrEqual(t, p.Stats().PeakInFlight, int64(maxConcurrent))
	assert.Equal(t, int64(0), p.InFlight())
}

func TestExecutePipelineOrderedResults(t *testing.T) {
	p, err := New(types.PoolConfig{MaxConcurrent: 3}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	const sessions = 6
	specs := make([]SessionSpec, sessions)
	for i := range specs {
		answer := fmt.Sprintf("answer-%d", i)
		delay := time.Duration(sessions-i) * 5 * time.Millisecond
		specs[i] = SessionSpec{
			Orchestrator: newTestOrchestrator(t, 1, 3),
			Sample: func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
				// Later specs finish first so completion order differs
				// from input order.
				time.Sleep(delay)
				return scalarResponse(answer, 0.9), nil
			},
		}
	}

	results, err := p.ExecutePipeline(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, results, sessions)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("answer-%d", i), r.Winner.Content.Text)
	}
}

func TestPipelineIsolatesSessionFailures(t *testing.T) {
	p, err := New(types.PoolConfig{MaxConcurrent: 2}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	failing := func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
		return nil, errors.New("provider unavailable")
	}

	results, err := p.ExecutePipeline(context.Background(), []SessionSpec{
		{Orchestrator: newTestOrchestrator(t, 1, 3), Sample: constantSampler("fine")},
		{Orchestrator: newTestOrchestrator(t, 1, 3), Sample: failing},
		{Orchestrator: newTestOrchestrator(t, 1, 3), Sample: constantSampler("also fine")},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	assert.Equal(t, "fine", results[0].Winner.Content.Text)

	require.Error(t, results[1].Err)
	assert.True(t, types.IsErrorCode(results[1].Err, types.ErrNoConsensus))
	assert.Equal(t, 3, results[1].Metrics.InvalidSamples)

	require.NoError(t, results[2].Err)
	assert.Equal(t, "also fine", results[2].Winner.Content.Text)

	stats := p.Stats()
	assert.Equal(t, int64(3), stats.Sessions)
	assert.Equal(t, int64(2), stats.Converged)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestSemaphoreReleasedOnSampleError(t *testing.T) {
	p, err := New(types.PoolConfig{MaxConcurrent: 1}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	failing := func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
		return nil, errors.New("boom")
	}

	res := p.Execute(context.Background(), SessionSpec{
		Orchestrator: newTestOrchestrator(t, 1, 3),
		Sample:       failing,
	})
	require.Error(t, res.Err)
	assert.Equal(t, int64(0), p.InFlight())

	// A single-permit semaphore that leaked on the error path would
	// block this follow-up session forever.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res = p.Execute(ctx, SessionSpec{
		Orchestrator: newTestOrchestrator(t, 1, 3),
		Sample:       constantSampler("recovered"),
	})
	require.NoError(t, res.Err)
	assert.Equal(t, "recovered", res.Winner.Content.Text)
}

func TestDecisionCacheHitShortCircuits(t *testing.T) {
	mem := cache.NewMemoryCache(time.Hour)
	defer mem.Close()

	p, err := New(types.PoolConfig{MaxConcurrent: 2}, zap.NewNop(), WithDecisionCache(mem))
	require.NoError(t, err)
	defer p.Close()

	var calls atomic.Int64
	counting := func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
		calls.Add(1)
		return scalarResponse("settled", 0.9), nil
	}

	spec := SessionSpec{
		Orchestrator: newTestOrchestrator(t, 2, 10),
		Sample:       counting,
		Fingerprint:  "step:extract-date:v1",
	}

	first := p.Execute(context.Background(), spec)
	require.NoError(t, first.Err)
	assert.False(t, first.Metrics.CacheHit)
	assert.Equal(t, int64(2), calls.Load())

	second := p.Execute(context.Background(), spec)
	require.NoError(t, second.Err)
	assert.True(t, second.Metrics.CacheHit)
	assert.Equal(t, "settled", second.Winner.Content.Text)
	assert.Equal(t, int64(2), calls.Load(), "cached decision must not sample again")
	assert.Equal(t, int64(1), p.Stats().CacheHits)
}

func TestFailedSessionNotCached(t *testing.T) {
	mem := cache.NewMemoryCache(time.Hour)
	defer mem.Close()

	p, err := New(types.PoolConfig{MaxConcurrent: 2}, zap.NewNop(), WithDecisionCache(mem))
	require.NoError(t, err)
	defer p.Close()

	res := p.Execute(context.Background(), SessionSpec{
		Orchestrator: newTestOrchestrator(t, 1, 2),
		Sample: func(ctx context.Context, temperature float64) (*types.AgentResponse, error) {
			return nil, errors.New("boom")
		},
		Fingerprint: "step:never-settled",
	})
	require.Error(t, res.Err)

	_, err = mem.Get(context.Background(), "step:never-settled")
	assert.True(t, cache.IsCacheMiss(err))
}

func TestClosedPoolRejectsWork(t *testing.T) {
	p, err := New(types.PoolConfig{MaxConcurrent: 2}, zap.NewNop())
	require.NoError(t, err)
	p.Close()

	res := p.Execute(context.Background(), SessionSpec{
		Orchestrator: newTestOrchestrator(t, 1, 3),
		Sample:       constantSampler("x"),
	})
	require.Error(t, res.Err)
	assert.True(t, types.IsErrorCode(res.Err, types.ErrPoolClosed))

	_, err = p.ExecutePipeline(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrPoolClosed))
}

func TestExecuteRejectsIncompleteSpec(t *testing.T) {
	p, err := New(types.PoolConfig{MaxConcurrent: 2}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	res := p.Execute(context.Background(), SessionSpec{Sample: constantSampler("x")})
	require.Error(t, res.Err)
	assert.True(t, types.IsErrorCode(res.Err, types.ErrInvalidConfig))
}
