package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "archivist:lock:"
	retryInterval = 25 * time.Millisecond
	releaseWait   = 2 * time.Second
)

var ErrLockTimeout = errors.New("timed out waiting for lock")

// only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a per-key mutex shared by every process using the same
// redis. A holder that dies releases the key after its ttl.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

// Lock blocks until key is acquired, ctx is done, or ttl has passed.
func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key
	deadline := time.Now().Add(ttl)

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			return nil, errors.Wrap(err, "failed to acquire lock")
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseWait)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err(); err != nil {
				slog.Warn(
					"failed to release lock",
					slog.String("key", key),
					slog.String("error", err.Error()),
					slog.String("module", "lock"),
				)
			}
		})
	}, nil
}
