package domain

import (
	"context"
	"time"
)

// Cache is an explicit key/value store with per-entry TTL.
// Supports two-phase caching: local LRU in front of Redis.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix and returns how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string `yaml:"type" env:"AIRPASS_CACHE_TYPE" env-default:"memory"`

	// Local LRU cache settings
	LocalMaxSize int           `yaml:"localMaxSize" env:"AIRPASS_CACHE_LOCAL_SIZE" env-default:"10000"`
	LocalTTL     time.Duration `yaml:"localTTL" env:"AIRPASS_CACHE_LOCAL_TTL" env-default:"5m"`

	// RuleTTL is how long rule lookups and listings stay cached.
	RuleTTL time.Duration `yaml:"ruleTTL" env:"AIRPASS_CACHE_RULE_TTL" env-default:"1h"`

	// Redis settings
	RedisAddr     string `yaml:"redisAddr" env:"AIRPASS_REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redisPassword" env:"AIRPASS_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redisDB" env:"AIRPASS_REDIS_DB" env-default:"0"`

	// Two-phase settings
	EnableTwoPhase bool `yaml:"enableTwoPhase" env:"AIRPASS_CACHE_TWO_PHASE" env-default:"false"` // If true, check local first, then Redis
}
