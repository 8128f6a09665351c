package cache

import (
	"context"
	"errors"
	"time"

	"github.com/voteflow/voteflow/types"
)

// ErrCacheMiss is returned by Get when no decision is stored under the
// fingerprint.
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss reports whether the error is a cache miss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// DecisionCache stores settled voting decisions keyed by a step
// fingerprint. Implementations must be safe for concurrent use.
type DecisionCache interface {
	// Get returns the cached winner for the fingerprint, or
	// ErrCacheMiss.
	Get(ctx context.Context, fingerprint string) (*types.AgentResponse, error)

	// Set stores the winner under the fingerprint. A zero ttl uses the
	// implementation's default.
	Set(ctx context.Context, fingerprint string, winner *types.AgentResponse, ttl time.Duration) error

	// Delete removes stored decisions.
	Delete(ctx context.Context, fingerprints ...string) error

	// Close releases the cache's resources.
	Close() error
}
