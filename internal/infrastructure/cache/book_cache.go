// Package cache keeps single-book reads in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
)

const (
	keyPrefix = "book:"
	genPrefix = "book:gen:"
	genTTL    = 24 * time.Hour
)

// setScript writes the entry only while the generation read before the
// database load is still current.
var setScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[2]) or "0")
if cur ~= tonumber(ARGV[2]) then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`)

var invalidateScript = redis.NewScript(`
redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
return redis.call("DEL", KEYS[1])
`)

// BookCache stores books as JSON under book:<id>. Every invalidation bumps
// book:gen:<id>, so a read that loaded a row before an update or delete
// cannot write it back afterwards.
type BookCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBookCache(rdb *redis.Client, ttl time.Duration) *BookCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BookCache{rdb: rdb, ttl: ttl}
}

func key(id string) string    { return keyPrefix + id }
func genKey(id string) string { return genPrefix + id }

// Get reports a miss as (nil, false, nil).
func (c *BookCache) Get(ctx context.Context, id string) (*entity.Book, bool, error) {
	res, err := c.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var b entity.Book
	if err := json.Unmarshal(res, &b); err != nil {
		// Unreadable entries are dropped and treated as a miss.
		_ = c.rdb.Del(ctx, key(id)).Err()
		return nil, false, nil
	}
	return &b, true, nil
}

// Generation returns the invalidation counter of id; 0 when never bumped.
func (c *BookCache) Generation(ctx context.Context, id string) (int64, error) {
	n, err := c.rdb.Get(ctx, genKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Set stores b unless id was invalidated after gen was read.
func (c *BookCache) Set(ctx context.Context, b *entity.Book, gen int64) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return setScript.Run(ctx, c.rdb, []string{key(b.ID), genKey(b.ID)}, raw, gen, c.ttl.Milliseconds()).Err()
}

func (c *BookCache) Invalidate(ctx context.Context, id string) error {
	return invalidateScript.Run(ctx, c.rdb, []string{key(id), genKey(id)}, genTTL.Milliseconds()).Err()
}
