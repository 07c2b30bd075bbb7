package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis so several API instances share one
// cache. Keys carry no server-side expiry; freshness is checked on read.
type RedisCache struct {
	rdb     *redis.Client
	now     Clock
	timeout time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, now: time.Now, timeout: 2 * time.Second}
}

// Read implements Reader interface
func (rc *RedisCache) Read(key string, maxAge time.Duration) (*Entry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	data, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors are both a miss
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || !entry.hasData() {
		return nil, false
	}
	if !entry.Fresh(rc.now(), maxAge) {
		return nil, false
	}
	return &entry, true
}

// Write implements Writer interface
func (rc *RedisCache) Write(key string, entry *Entry) error {
	entry.Key = key
	entry.FetchedAt = rc.now()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()
	return rc.rdb.Set(ctx, key, data, 0).Err()
}

// KeyFor implements KeyGenerator interface
func (rc *RedisCache) KeyFor(catalogID string) string {
	return KeyFor(catalogID)
}

var _ Cache = (*RedisCache)(nil)
