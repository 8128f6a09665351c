package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voteflow/voteflow/types"
)

// RedisConfig configures the redis-backed decision cache.
type RedisConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	Password     string        `yaml:"password" json:"password"`
	DB           int           `yaml:"db" json:"db"`
	DefaultTTL   time.Duration `yaml:"default_ttl" json:"default_ttl"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	PoolSize     int           `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" json:"min_idle_conns"`

	// KeyPrefix namespaces fingerprints so several pipelines can share
	// one redis instance.
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

// DefaultRedisConfig returns the default redis cache configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DefaultTTL:   24 * time.Hour,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		KeyPrefix:    "voteflow:decision:",
	}
}

// RedisCache is a redis-backed DecisionCache.
type RedisCache struct {
	client *redis.Client
	config RedisConfig
	logger *zap.Logger
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(config RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c := &RedisCache{
		client: client,
		config: config,
		logger: logger.With(zap.String("component", "decision_cache")),
	}

	logger.Info("decision cache initialized",
		zap.String("addr", config.Addr),
		zap.Duration("default_ttl", config.DefaultTTL),
	)

	return c, nil
}

func (c *RedisCache) key(fingerprint string) string {
	return c.config.KeyPrefix + fingerprint
}

// Get returns the cached winner for the fingerprint.
func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*types.AgentResponse, error) {
	val, err := c.client.Get(ctx, c.key(fingerprint)).Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		c.logger.Error("cache get failed", zap.String("fingerprint", fingerprint), zap.Error(err))
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var winner types.AgentResponse
	if err := json.Unmarshal([]byte(val), &winner); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached decision: %w", err)
	}
	return &winner, nil
}

// Set stores the winner under the fingerprint.
func (c *RedisCache) Set(ctx context.Context, fingerprint string, winner *types.AgentResponse, ttl time.Duration) error {
	data, err := json.Marshal(winner)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}

	if err := c.client.Set(ctx, c.key(fingerprint), data, ttl).Err(); err != nil {
		c.logger.Error("cache set failed", zap.String("fingerprint", fingerprint), zap.Error(err))
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete removes stored decisions.
func (c *RedisCache) Delete(ctx context.Context, fingerprints ...string) error {
	if len(fingerprints) == 0 {
		return nil
	}
	keys := make([]string, len(fingerprints))
	for i, fp := range fingerprints {
		keys[i] = c.key(fp)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (c *RedisCache) Close() error {
	c.logger.Info("closing decision cache")
	return c.client.Close()
}
