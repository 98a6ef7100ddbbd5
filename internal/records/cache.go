package records

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 30 * time.Second

// Cache is an opportunistic Redis cache for single-record reads. It is
// never authoritative: misses and redis failures fall through to the
// store, and entries expire on a short TTL rather than being
// invalidated on write.
type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewCache(rdb *goredis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(account, uuid string) string {
	return "records:" + account + ":" + uuid
}

// Get returns the cached record, if present and decodable.
func (c *Cache) Get(ctx context.Context, account, uuid string) (Record, bool) {
	if c == nil || c.rdb == nil {
		return Record{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(account, uuid)).Bytes()
	if err != nil {
		return Record{}, false
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, false
	}
	return r, true
}

// Put stores a record, best-effort.
func (c *Cache) Put(ctx context.Context, account string, r Record) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, cacheKey(account, r.UUID), raw, c.ttl)
}

// Drop removes a cached record, best-effort. Used after deletes so a
// removed record does not linger for a full TTL.
func (c *Cache) Drop(ctx context.Context, account, uuid string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, cacheKey(account, uuid))
}
