package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const LockKey = "featuresgym:sweeper:lock"

// releaseScript deletes the lock only while it still holds our token, so a
// pass that outlived its TTL cannot drop a newer holder's lock.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// Locker keeps two sweep passes from overlapping across instances.
type Locker interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

type RedisLocker struct {
	rdb   *redis.Client
	key   string
	token string
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb, key: LockKey, token: uuid.NewString()}
}

func (l *RedisLocker) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, l.key, l.token, ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context) error {
	return l.rdb.Eval(ctx, releaseScript, []string{l.key}, l.token).Err()
}

// noLock is used without Redis. The visit state machine alone still keeps
// a visit from being swept twice.
type noLock struct{}

func (noLock) Acquire(context.Context, time.Duration) (bool, error) { return true, nil }
func (noLock) Release(context.Context) error                        { return nil }
