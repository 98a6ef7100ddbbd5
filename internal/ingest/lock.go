package ingest

import (
	"context"
	"time"

	"mango/pkg/utils"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const lockKey = "ingest:cycle:lock"

// RedisLock guards the ingestion cycle across processes. The owner
// token ties release to the process that acquired the lock; the TTL
// frees the lock if that process dies mid-cycle.
type RedisLock struct {
	rdb   *goredis.Client
	owner string
	ttl   time.Duration
}

func NewRedisLock(rdb *goredis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisLock{rdb: rdb, owner: uuid.NewString(), ttl: ttl}
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	return utils.AcquireLock(ctx, l.rdb, lockKey, l.owner, l.ttl)
}

func (l *RedisLock) Release(ctx context.Context) error {
	return utils.ReleaseLock(ctx, l.rdb, lockKey, l.owner)
}
