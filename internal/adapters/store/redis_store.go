package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contentiq/contentiq/internal/domain/providers"
	redisclient "github.com/contentiq/contentiq/internal/infrastructure/clients/redis"
)

// RedisStore implements the AnalyticsStore interface on the shared Redis
// backend. Per-key atomicity comes from Redis itself (INCR, LPUSH);
// per-call timeouts come from the client options.
type RedisStore struct {
	client *redisclient.Client
}

// NewRedisStore creates a new Redis-backed analytics store.
func NewRedisStore(client *redisclient.Client) providers.AnalyticsStore {
	return &RedisStore{client: client}
}

// Get retrieves the value for a key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.Client().Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, providers.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return result, nil
}

// SetWithExpiry stores a value with a ttl.
func (s *RedisStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Client().Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Increment atomically increments the counter at key.
func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Client().Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment key %s: %w", key, err)
	}
	return val, nil
}

// SetExpiry resets the ttl of an existing key.
func (s *RedisStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Client().Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set expiry on key %s: %w", key, err)
	}
	return nil
}

// ListPushFront prepends a value to the list at key.
func (s *RedisStore) ListPushFront(ctx context.Context, key string, value string) error {
	if err := s.client.Client().LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("failed to push to list %s: %w", key, err)
	}
	return nil
}

// ListTrim keeps only the list elements within [start, stop].
func (s *RedisStore) ListTrim(ctx context.Context, key string, start, stop int64) error {
	if err := s.client.Client().LTrim(ctx, key, start, stop).Err(); err != nil {
		return fmt.Errorf("failed to trim list %s: %w", key, err)
	}
	return nil
}

// ListRange returns the list elements within [start, stop].
func (s *RedisStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.Client().LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range list %s: %w", key, err)
	}
	return vals, nil
}

// KeysByPrefix enumerates all keys starting with prefix. Uses SCAN rather
// than KEYS so enumeration never blocks the shared backend.
func (s *RedisStore) KeysByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Client().Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys with prefix %s: %w", prefix, err)
	}
	return keys, nil
}
