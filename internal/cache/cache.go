// Package cache is a small typed memo with expiry, used to avoid downloading
// the same feed twice within a run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Cache[V any] struct {
	items *gocache.Cache
}

// New creates a cache whose entries expire after ttl. Expired entries are
// purged every ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{items: gocache.New(ttl, ttl)}
}

func (c *Cache[V]) Set(key string, value V) {
	c.items.SetDefault(key, value)
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	raw, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Len returns the number of unexpired entries.
func (c *Cache[V]) Len() int {
	return c.items.ItemCount()
}

// GenerateKey hashes parts into a fixed-size key.
func GenerateKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
