package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exclusive(t *testing.T, l Locker) {
	t.Helper()

	var (
		wg      sync.WaitGroup
		holders int32
		maxSeen int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&holders, 1)
			for {
				seen := atomic.LoadInt32(&maxSeen)
				if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&holders, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestMutexIsExclusive(t *testing.T) {
	exclusive(t, NewMutex())
}

func TestMutexHonoursContext(t *testing.T) {
	m := NewMutex()
	release, err := m.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release, err = m.Lock(context.Background())
	require.NoError(t, err)
	release()
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("skipping Redis lock tests: TEST_REDIS_ADDR is not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("skipping Redis lock tests: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLock(t *testing.T) {
	client := newTestRedis(t)
	key := "optivenue:test-lock:" + uuid.NewString()

	t.Run("exclusive", func(t *testing.T) {
		exclusive(t, NewRedisLock(client, key, 5*time.Second, 5*time.Millisecond))
	})

	t.Run("times out while held", func(t *testing.T) {
		l := NewRedisLock(client, key, 5*time.Second, 5*time.Millisecond)
		release, err := l.Lock(context.Background())
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, err = l.Lock(ctx)
		assert.ErrorIs(t, err, ErrNotAcquired)
	})

	t.Run("release keeps a lock taken over after expiry", func(t *testing.T) {
		l := NewRedisLock(client, key, 20*time.Millisecond, 5*time.Millisecond)
		release, err := l.Lock(context.Background())
		require.NoError(t, err)

		time.Sleep(40 * time.Millisecond)
		require.NoError(t, client.Set(context.Background(), key, "someone-else", time.Second).Err())

		release()
		assert.Equal(t, "someone-else", client.Get(context.Background(), key).Val())
		client.Del(context.Background(), key)
	})
}
