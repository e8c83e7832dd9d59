package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SweepLocker guards one sweep tick so that only one process runs it.
// TryLock returns a release func when the lock was acquired.
type SweepLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
}

const sweepLockPrefix = "hotel:sweep-lock:"

// releaseScript deletes the key only if it still carries our token
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisSweepLocker implements SweepLocker with SET NX PX
type RedisSweepLocker struct {
	client   *redis.Client
	newToken func() string
}

// NewRedisSweepLocker creates a locker backed by client
func NewRedisSweepLocker(client *redis.Client) *RedisSweepLocker {
	return &RedisSweepLocker{
		client:   client,
		newToken: func() string { return uuid.NewString() },
	}
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// TryLock acquires the named lock for ttl
func (l *RedisSweepLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := sweepLockPrefix + name
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire sweep lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The tick context may be done by now; release on a fresh short deadline
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		l.client.Eval(releaseCtx, releaseScript, []string{key}, token)
	}
	return release, true, nil
}
