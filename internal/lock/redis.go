package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	defaultLockTTL      = 2 * time.Minute
	defaultPollInterval = 100 * time.Millisecond
	keyPrefix           = "meritscore:lock:"
)

// RedisLocker takes a SETNX lease per key and polls until it is acquired or
// the context ends. Release only deletes the key if the token still matches.
type RedisLocker struct {
	client       redis.UniversalClient
	script       *redis.Script
	ttl          time.Duration
	pollInterval time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{
		client:       client,
		script:       redis.NewScript(lockReleaseScript),
		ttl:          ttl,
		pollInterval: defaultPollInterval,
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{keyPrefix + key}, token).Err()
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		token, ok, err := l.TryLock(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			released := false
			return func() {
				if released {
					return
				}
				released = true
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = l.Release(ctx, key, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockContention, ctx.Err())
		case <-ticker.C:
		}
	}
}
