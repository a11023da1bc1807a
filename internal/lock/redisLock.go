package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a Locker shared by every process using the same key. The TTL
// bounds how long a crashed holder can block others.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLock(client *redis.Client, key string, ttl, retry time.Duration) *RedisLock {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLock{client: client, key: key, ttl: ttl, retry: retry}
}

func (l *RedisLock) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotAcquired, err)
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrNotAcquired, ctx.Err())
		}
	}
}

func (l *RedisLock) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		logrus.WithError(err).WithField("key", l.key).Error("Failed to release booking lock")
	}
}
