package clientcache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a type-safe cache for provider SDK clients. Credentials rotate
// rarely relative to dispatch volume, so clients are built once per
// (service, key) and reused; singleflight collapses concurrent builds for
// the same key.
type Cache[T any] struct {
	cache   sync.Map
	sfGroup singleflight.Group
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// GetOrCreate retrieves a cached client or creates one using the factory.
// The factory runs at most once per key, even under concurrent load.
func (c *Cache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if cached, ok := c.cache.Load(key); ok {
		return cached.(T), nil
	}

	v, err, _ := c.sfGroup.Do(key, func() (any, error) {
		// Re-check after winning the singleflight slot
		if cached, ok := c.cache.Load(key); ok {
			return cached.(T), nil
		}

		client, err := factory()
		if err != nil {
			var zero T
			return zero, err
		}

		c.cache.Store(key, client)
		return client, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Delete removes a client from the cache, forcing the next GetOrCreate to
// rebuild it. Called when a credential is rotated or deleted.
func (c *Cache[T]) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all cached clients.
func (c *Cache[T]) Clear() {
	c.cache.Range(func(key, value any) bool {
		c.cache.Delete(key)
		return true
	})
}
