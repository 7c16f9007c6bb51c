package normalize

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoized names.
const DefaultCacheSize = 50000

// CachedNormalizer memoizes normalization results keyed by the raw name.
// Catalog and listing names repeat heavily between runs, and a name always
// normalizes to the same string for a given configuration.
type CachedNormalizer struct {
	inner TextNormalizer
	cache *lru.Cache[string, string]
}

// NewCached wraps inner with an LRU cache holding up to size entries.
func NewCached(inner TextNormalizer, size int) (*CachedNormalizer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalization cache: %w", err)
	}
	return &CachedNormalizer{inner: inner, cache: c}, nil
}

// Normalize returns the cached result for raw, computing it on a miss.
func (c *CachedNormalizer) Normalize(raw string) string {
	if v, ok := c.cache.Get(raw); ok {
		return v
	}
	v := c.inner.Normalize(raw)
	c.cache.Add(raw, v)
	return v
}

// Len reports how many names are cached.
func (c *CachedNormalizer) Len() int {
	return c.cache.Len()
}

// Purge drops every cached entry.
func (c *CachedNormalizer) Purge() {
	c.cache.Purge()
}
