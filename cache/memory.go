package cache

import (
	"context"
	"sync"
	"time"

	"github.com/voteflow/voteflow/types"
)

// MemoryCache is an in-process DecisionCache for single-node pipelines
// and tests. Entries expire lazily on read.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	winner    *types.AgentResponse
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache. A zero defaultTTL keeps
// entries until deleted.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) (*types.AgentResponse, error) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, fingerprint)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return entry.winner, nil
}

func (c *MemoryCache) Set(_ context.Context, fingerprint string, winner *types.AgentResponse, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[fingerprint] = memoryEntry{winner: winner, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, fingerprints ...string) error {
	c.mu.Lock()
	for _, fp := range fingerprints {
		delete(c.entries, fp)
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}
