package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// DefaultAdminStatusTTL bounds how stale a cached admin verdict may be. A
// revoked admin keeps access for at most this long unless Invalidate is
// called first.
const DefaultAdminStatusTTL = 5 * time.Minute

// StatusCache memoizes per-user admin verdicts. Entries live in Redis when a
// client is configured so verdicts survive restarts and shard across
// replicas; otherwise an in-process map with the same TTL semantics is used.
type StatusCache struct {
	redis *redis.Client
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]statusEntry
}

type statusEntry struct {
	admin     bool
	expiresAt time.Time
}

// NewStatusCache builds a cache. redisClient may be nil; ttl <= 0 selects the
// default.
func NewStatusCache(redisClient *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = DefaultAdminStatusTTL
	}
	return &StatusCache{
		redis:   redisClient,
		ttl:     ttl,
		entries: make(map[string]statusEntry),
	}
}

func (c *StatusCache) key(userID string) string {
	return fmt.Sprintf("auth:admin:%s", userID)
}

// Get returns the cached verdict for a user, if one is still live.
func (c *StatusCache) Get(ctx context.Context, userID string) (admin, found bool) {
	if c.redis != nil {
		val, err := c.redis.Get(ctx, c.key(userID)).Result()
		switch {
		case err == nil:
			return val == "1", true
		case err != redis.Nil:
			fiberlog.Warnf("Redis admin-status lookup failed, falling back to local cache: %v", err)
		}
	}

	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return false, false
	}
	return entry.admin, true
}

// Set stores a verdict for the cache TTL.
func (c *StatusCache) Set(ctx context.Context, userID string, admin bool) {
	if c.redis != nil {
		val := "0"
		if admin {
			val = "1"
		}
		if err := c.redis.Set(ctx, c.key(userID), val, c.ttl).Err(); err != nil {
			fiberlog.Warnf("Redis admin-status store failed, using local cache only: %v", err)
		}
	}

	c.mu.Lock()
	c.entries[userID] = statusEntry{admin: admin, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops a user's verdict so the next request re-resolves it.
func (c *StatusCache) Invalidate(ctx context.Context, userID string) {
	if c.redis != nil {
		if err := c.redis.Del(ctx, c.key(userID)).Err(); err != nil {
			fiberlog.Warnf("Redis admin-status invalidation failed: %v", err)
		}
	}

	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
