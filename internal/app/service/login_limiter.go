package service

import (
	"context"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// LoginLimiter counts failed logins per username and locks the username out
// once the count reaches a threshold.
type LoginLimiter interface {
	Locked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// NoopLimiter never locks anyone out. Used when Redis is not configured.
type NoopLimiter struct{}

func (NoopLimiter) Locked(context.Context, string) (bool, error) { return false, nil }
func (NoopLimiter) RecordFailure(context.Context, string) error  { return nil }
func (NoopLimiter) Reset(context.Context, string) error          { return nil }

// FailureCounter is the subset of *redis.Client the limiter needs.
type FailureCounter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLoginLimiter keeps one counter per username. The lockout window starts
// at the first failure and the counter expires with it.
type RedisLoginLimiter struct {
	rdb         FailureCounter
	prefix      string
	maxFailures int64
	window      time.Duration
}

func NewRedisLoginLimiter(rdb FailureCounter, appName string, maxFailures int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{
		rdb:         rdb,
		prefix:      slug.Make(appName) + ":login_failures:",
		maxFailures: int64(maxFailures),
		window:      window,
	}
}

func (l *RedisLoginLimiter) key(username string) string {
	return l.prefix + username
}

func (l *RedisLoginLimiter) Locked(ctx context.Context, username string) (bool, error) {
	count, err := l.rdb.Get(ctx, l.key(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, oops.Code("LOGIN_LIMITER_READ_FAILED").With("username", username).Wrap(err)
	}
	return count >= l.maxFailures, nil
}

// RecordFailure increments the counter and gives it a TTL in one MULTI.
// EXPIRE NX leaves a running window alone and repairs a counter without one.
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, username string) error {
	key := l.key(username)
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return oops.Code("LOGIN_LIMITER_WRITE_FAILED").With("username", username).Wrap(err)
	}
	return nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, username string) error {
	if err := l.rdb.Del(ctx, l.key(username)).Err(); err != nil {
		return oops.Code("LOGIN_LIMITER_RESET_FAILED").With("username", username).Wrap(err)
	}
	return nil
}
