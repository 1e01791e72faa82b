package redis_limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrLimitReached every slot for the key is taken.
var ErrLimitReached = errors.New("concurrency limit reached")

// Limiter hands out a bounded number of slots per key.
// A limit of 0 or less means unlimited for every implementation.
type Limiter interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string)
}

var acquireScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then
	current = 0
else
	current = tonumber(current)
end

if current >= tonumber(ARGV[1]) then
	return current + 1
end

local newCount = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
return newCount`)

var releaseScript = redis.NewScript(`
local count = redis.call('DECR', KEYS[1])
if tonumber(count) <= 0 then
	redis.call('DEL', KEYS[1])
	return 0
else
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
	return count
end`)

// RedisLimiter shares slot counts between processes through Redis.
// The TTL frees slots leaked by a crashed process.
type RedisLimiter struct {
	client        *redis.Client
	maxConcurrent int
	keyPrefix     string
	ttl           time.Duration
	logger        logrus.FieldLogger
}

// NewRedisLimiter creates a RedisLimiter. maxConcurrent <= 0 means unlimited.
func NewRedisLimiter(client *redis.Client, maxConcurrent int, keyPrefix string, ttl time.Duration, logger logrus.FieldLogger) *RedisLimiter {
	return &RedisLimiter{
		client:        client,
		maxConcurrent: maxConcurrent,
		keyPrefix:     keyPrefix,
		ttl:           ttl,
		logger:        logger,
	}
}

// Acquire takes a slot for key or returns ErrLimitReached.
func (rl *RedisLimiter) Acquire(ctx context.Context, key string) error {
	if rl.maxConcurrent <= 0 {
		return nil
	}

	result, err := acquireScript.Run(ctx, rl.client, []string{rl.keyPrefix + key}, rl.maxConcurrent, int(rl.ttl.Seconds())).Int()
	if err != nil {
		return fmt.Errorf("run acquire script: %w", err)
	}

	if result > rl.maxConcurrent {
		rl.logger.WithFields(logrus.Fields{"key": key, "max": rl.maxConcurrent}).Debug("limiter full")
		return ErrLimitReached
	}
	return nil
}

// Release gives a slot back. Errors are logged, the TTL cleans up eventually.
func (rl *RedisLimiter) Release(ctx context.Context, key string) {
	if rl.maxConcurrent <= 0 {
		return
	}
	if err := releaseScript.Run(ctx, rl.client, []string{rl.keyPrefix + key}, int(rl.ttl.Seconds())).Err(); err != nil {
		rl.logger.WithError(err).WithField("key", key).Warn("limiter release failed")
	}
}

// GetCurrent returns the number of slots in use for key.
func (rl *RedisLimiter) GetCurrent(ctx context.Context, key string) (int, error) {
	current, err := rl.client.Get(ctx, rl.keyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read slot count: %w", err)
	}
	return current, nil
}
