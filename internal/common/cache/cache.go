// internal/common/cache/cache.go

// Package cache is an explicit, injected result cache keyed by a content hash
// of the request. Values are pure functions of their key, so writes are
// idempotent and last-write-wins. Tag sets support explicit invalidation when
// the catalog changes underneath cached results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	stderrors "bamaai-connect/internal/common/errors"
	"bamaai-connect/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis with TTL and tag-based invalidation. A nil *Cache is a
// valid no-op cache, so callers never need to branch on whether caching is
// configured.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func New(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		rdb:    rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
	}
}

// Key builds a deterministic cache key from the given parts. Parts are JSON
// encoded in order and hashed, so structurally equal requests collide.
func Key(prefix string, parts ...interface{}) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	for _, p := range parts {
		b, _ := json.Marshal(p)
		h.Write([]byte{0})
		h.Write(b)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Get loads and unmarshals a cached value into dest. A miss, an unreachable
// cache, or a decode failure all report false; the caller recomputes.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		stdErr := stderrors.NewCacheUnavailableError(err)
		c.logger.Warn(stdErr.Message, map[string]interface{}{
			"code":  string(stdErr.Code),
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Warn("cache entry corrupt", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Set stores value under key with the configured TTL and registers the key
// under each tag set. Failures are logged and swallowed; the cache is an
// optimization, never a dependency.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, tags ...string) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	for _, tag := range tags {
		tagKey := "tag:" + tag
		if err := c.rdb.SAdd(ctx, tagKey, key).Err(); err != nil {
			c.logger.Warn("cache tag write failed", map[string]interface{}{
				"tag":   tag,
				"error": err.Error(),
			})
			continue
		}
		// Tag sets expire alongside their members so stale tags don't pile up.
		c.rdb.Expire(ctx, tagKey, c.ttl*2)
	}
}

// Invalidate deletes every key registered under the tag, then the tag set.
func (c *Cache) Invalidate(ctx context.Context, tag string) error {
	if c == nil {
		return nil
	}
	tagKey := "tag:" + tag
	keys, err := c.rdb.SMembers(ctx, tagKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return c.rdb.Del(ctx, tagKey).Err()
}
