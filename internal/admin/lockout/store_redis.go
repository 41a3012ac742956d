package lockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failureKeyPrefix = "lockout:fail:"
	lockKeyPrefix    = "lockout:lock:"
)

// RedisStore is the Redis-backed failure store. This is the recommended
// implementation for distributed deployments where multiple instances need
// to share lockout state.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// RecordFailure increments the failure counter. The window TTL is set on the
// first failure so the count expires as a unit.
func (s *RedisStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	failKey := failureKeyPrefix + key

	count, err := s.client.Incr(ctx, failKey).Result()
	if err != nil {
		return 0, fmt.Errorf("increment failure count: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, failKey, window).Err(); err != nil {
			return 0, fmt.Errorf("set failure window: %w", err)
		}
	}
	return int(count), nil
}

// Lock marks the identifier locked with expiry. Key existence is what matters.
func (s *RedisStore) Lock(ctx context.Context, key string, duration time.Duration) error {
	if err := s.client.Set(ctx, lockKeyPrefix+key, "1", duration).Err(); err != nil {
		return fmt.Errorf("set lock: %w", err)
	}
	return nil
}

func (s *RedisStore) IsLocked(ctx context.Context, key string) (bool, time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, lockKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("check lock: %w", err)
	}
	if ttl <= 0 {
		return false, 0, nil
	}
	return true, ttl, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, failureKeyPrefix+key, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear lockout state: %w", err)
	}
	return nil
}
