package analyzer

import (
	"fmt"
	"log"

	"github.com/maypok86/otter"
)

// DefaultCacheCapacity bounds the number of memoized entry results.
const DefaultCacheCapacity = 256

// minCacheCapacity is the smallest capacity actually honored. The eviction
// policy drops writes outright when sized below its internal minimum, which
// would turn small configured capacities into a cache that never stores.
const minCacheCapacity = 64

// ResultCache memoizes extraction results keyed by resolved entry path.
// Stored values are pointers, so repeated lookups return the identical
// result object until invalidation.
type ResultCache struct {
	entries otter.Cache[string, *ExtractionResult]
}

// NewResultCache creates a cache holding up to capacity entry results.
func NewResultCache(capacity int) (*ResultCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if capacity < minCacheCapacity {
		capacity = minCacheCapacity
	}

	entries, err := otter.MustBuilder[string, *ExtractionResult](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build result cache: %w", err)
	}
	return &ResultCache{entries: entries}, nil
}

// GetOrCompute returns the cached result for key, computing and storing it
// on a miss. The computed result is stored before being returned, the
// empty-result case included, so a failing entry is not re-attempted on
// every call.
func (c *ResultCache) GetOrCompute(key string, compute func() *ExtractionResult) *ExtractionResult {
	if result, ok := c.entries.Get(key); ok {
		return result
	}

	result := compute()
	if !c.entries.Set(key, result) {
		log.Printf("Warning: result for %s was not cached; subsequent lookups will recompute\n", key)
	}
	return result
}

// Invalidate drops one entry's cached result.
func (c *ResultCache) Invalidate(key string) {
	c.entries.Delete(key)
}

// InvalidateAll drops every cached result.
func (c *ResultCache) InvalidateAll() {
	c.entries.Clear()
}

// Close releases the cache.
func (c *ResultCache) Close() {
	c.entries.Close()
}
