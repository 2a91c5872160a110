package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultAttemptKeyPrefix namespaces lockout counters in a shared Redis.
const DefaultAttemptKeyPrefix = "portalgate:login-failures:"

// RedisAttemptRepository counts failed logins in Redis so every gateway instance sees the
// same lockout state.
type RedisAttemptRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisAttemptRepository creates a RedisAttemptRepository using the given client.
func NewRedisAttemptRepository(client redis.UniversalClient) *RedisAttemptRepository {
	return &RedisAttemptRepository{client: client, prefix: DefaultAttemptKeyPrefix}
}

// NewRedisClient parses a redis:// or rediss:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Failures returns the failure count for key and the time left before it expires.
func (r *RedisAttemptRepository) Failures(ctx context.Context, key string) (int, time.Duration, error) {
	redisKey := r.prefix + key

	var (
		getCmd *redis.StringCmd
		ttlCmd *redis.DurationCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		getCmd = pipe.Get(ctx, redisKey)
		ttlCmd = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, fmt.Errorf("redis get failures: %w", err)
	}

	count, err := getCmd.Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("redis parse failures: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return count, ttl, nil
}

// RegisterFailure increments the count for key with INCR and starts the expiry window on the
// first failure. A counter found without expiry is given one so it cannot lock forever.
func (r *RedisAttemptRepository) RegisterFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	redisKey := r.prefix + key

	var (
		incrCmd *redis.IntCmd
		ttlCmd  *redis.DurationCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incrCmd = pipe.Incr(ctx, redisKey)
		ttlCmd = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr failures: %w", err)
	}

	if ttlCmd.Val() < 0 {
		if err := r.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return 0, fmt.Errorf("redis expire failures: %w", err)
		}
	}

	return int(incrCmd.Val()), nil
}

// Reset deletes the counter for key.
func (r *RedisAttemptRepository) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis reset failures: %w", err)
	}
	return nil
}

// Health checks the Redis connection.
func (r *RedisAttemptRepository) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
