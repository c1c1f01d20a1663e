package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultLinkCacheTTL = 5 * time.Minute

// tombstone marks a recently deactivated or deleted link. It blocks
// an in-flight resolution, which read the link as active before the
// state change committed, from re-caching the stale entry afterwards:
// Set never overwrites an existing key, so the write loses to the
// tombstone instead of resurrecting the link.
const (
	tombstone    = "gone"
	tombstoneTTL = 10 * time.Second
)

type cachedLink struct {
	ID        uint      `json:"id"`
	TargetURL string    `json:"target_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LinkCache keeps a short-lived Redis copy of active links on the
// redirect path. All methods are nil-safe and fail open: a cache error
// is logged and treated as a miss, never surfaced to the resolver.
type LinkCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewLinkCache builds a cache over the given Redis client. A nil
// client yields a cache that always misses.
func NewLinkCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *LinkCache {
	if ttl <= 0 {
		ttl = defaultLinkCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkCache{rdb: rdb, ttl: ttl, logger: logger}
}

func linkCacheKey(code string) string {
	return "link:" + code
}

func (c *LinkCache) Get(ctx context.Context, code string) *cachedLink {
	if c == nil || c.rdb == nil {
		return nil
	}
	data, err := c.rdb.Get(ctx, linkCacheKey(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("link cache read failed", zap.String("code", code), zap.Error(err))
		}
		return nil
	}
	if string(data) == tombstone {
		return nil
	}
	var entry cachedLink
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("link cache entry corrupt", zap.String("code", code), zap.Error(err))
		return nil
	}
	return &entry
}

// Set caches the entry unless the key is already present. SetNX keeps
// a write that raced with an Invalidate from clobbering the tombstone.
func (c *LinkCache) Set(ctx context.Context, code string, entry cachedLink) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.rdb.SetNX(ctx, linkCacheKey(code), data, c.ttl).Err(); err != nil {
		c.logger.Warn("link cache write failed", zap.String("code", code), zap.Error(err))
	}
}

// Invalidate replaces the cached entry with a short-lived tombstone.
// Called on deactivation, deletion and lazy expiry; the tombstone
// outlives any resolution that started before the state change, so a
// stale Set cannot bring the link back.
func (c *LinkCache) Invalidate(ctx context.Context, code string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, linkCacheKey(code), tombstone, tombstoneTTL).Err(); err != nil {
		c.logger.Warn("link cache invalidation failed", zap.String("code", code), zap.Error(err))
	}
}
