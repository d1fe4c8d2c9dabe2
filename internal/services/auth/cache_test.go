package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusCacheSetGet(t *testing.T) {
	cache := NewStatusCache(nil, time.Minute)
	ctx := context.Background()

	_, found := cache.Get(ctx, "user-1")
	assert.False(t, found)

	cache.Set(ctx, "user-1", true)
	admin, found := cache.Get(ctx, "user-1")
	assert.True(t, found)
	assert.True(t, admin)

	cache.Set(ctx, "user-2", false)
	admin, found = cache.Get(ctx, "user-2")
	assert.True(t, found)
	assert.False(t, admin)
}

func TestStatusCacheExpiry(t *testing.T) {
	cache := NewStatusCache(nil, 10*time.Millisecond)
	ctx := context.Background()

	cache.Set(ctx, "user-1", true)
	time.Sleep(30 * time.Millisecond)

	_, found := cache.Get(ctx, "user-1")
	assert.False(t, found)
}

func TestStatusCacheInvalidate(t *testing.T) {
	cache := NewStatusCache(nil, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "user-1", true)
	cache.Invalidate(ctx, "user-1")

	_, found := cache.Get(ctx, "user-1")
	assert.False(t, found)
}

func TestStatusCacheDefaultTTL(t *testing.T) {
	cache := NewStatusCache(nil, 0)
	assert.Equal(t, DefaultAdminStatusTTL, cache.ttl)
}
