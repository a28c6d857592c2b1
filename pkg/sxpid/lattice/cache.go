package lattice

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

// Cache holds one lattice per source count, built on first use and kept
// for the life of the cache.
//
// Thread Safety:
//
//	Cache is safe for concurrent use. Concurrent first requests for the same
//	source count share a single build.
type Cache struct {
	mu       sync.RWMutex
	lattices map[int]*Lattice
	flight   singleflight.Group

	// Stats
	hits   int64
	misses int64
	builds int64
}

// CacheStats reports cache activity.
type CacheStats struct {
	Hits   int64
	Misses int64
	Builds int64
	Cached []int
}

var defaultCache = NewCache()

// Default returns the process-wide cache used when no cache is injected.
func Default() *Cache { return defaultCache }

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{lattices: make(map[int]*Lattice)}
}

// Get returns the lattice for n sources, building it once if needed.
func (c *Cache) Get(n int) (*Lattice, error) {
	if n < MinSources || n > MaxSources {
		return nil, fmt.Errorf("lattice for %d sources (supported %d-%d): %w",
			n, MinSources, MaxSources, internalerr.ErrUnsupportedSources)
	}

	c.mu.RLock()
	l, ok := c.lattices[n]
	c.mu.RUnlock()
	if ok {
		atomic.AddInt64(&c.hits, 1)
		return l, nil
	}
	atomic.AddInt64(&c.misses, 1)

	v, err, _ := c.flight.Do(strconv.Itoa(n), func() (interface{}, error) {
		c.mu.RLock()
		existing, ok := c.lattices[n]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}

		built, err := Build(n)
		if err != nil {
			return nil, err
		}
		atomic.AddInt64(&c.builds, 1)

		c.mu.Lock()
		c.lattices[n] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Lattice), nil
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	cached := make([]int, 0, len(c.lattices))
	for n := MinSources; n <= MaxSources; n++ {
		if _, ok := c.lattices[n]; ok {
			cached = append(cached, n)
		}
	}
	c.mu.RUnlock()

	return CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Builds: atomic.LoadInt64(&c.builds),
		Cached: cached,
	}
}
