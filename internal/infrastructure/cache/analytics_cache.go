package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
)

type cacheEntry struct {
	value     *repository.SalesAnalytics
	expiresAt time.Time
}

type topEntry struct {
	value     []repository.TopMedicine
	expiresAt time.Time
}

// AnalyticsCache is an in-memory TTL cache for computed analytics payloads
// and top-sellers rankings. Expired entries are dropped lazily on read and
// swept periodically by a background goroutine.
type AnalyticsCache struct {
	mu         sync.RWMutex
	entries    map[repository.AnalyticsCacheKey]cacheEntry
	topEntries map[repository.TopSellingCacheKey]topEntry
	ttl        time.Duration
	stop       chan struct{}
	now        func() time.Time
}

// NewAnalyticsCache creates a cache with the given TTL and starts the sweep
// goroutine. Call Stop on shutdown.
func NewAnalyticsCache(ttl time.Duration) *AnalyticsCache {
	c := &AnalyticsCache{
		entries:    make(map[repository.AnalyticsCacheKey]cacheEntry),
		topEntries: make(map[repository.TopSellingCacheKey]topEntry),
		ttl:        ttl,
		stop:       make(chan struct{}),
		now:        time.Now,
	}
	go c.sweep()
	return c
}

func (c *AnalyticsCache) Get(key repository.AnalyticsCacheKey) (*repository.SalesAnalytics, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it
		if e, ok := c.entries[key]; ok && c.now().After(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

func (c *AnalyticsCache) Set(key repository.AnalyticsCacheKey, value *repository.SalesAnalytics) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// GetTopSelling returns the cached ranking for the key, if not expired
func (c *AnalyticsCache) GetTopSelling(key repository.TopSellingCacheKey) ([]repository.TopMedicine, bool) {
	c.mu.RLock()
	entry, ok := c.topEntries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it
		if e, ok := c.topEntries[key]; ok && c.now().After(e.expiresAt) {
			delete(c.topEntries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// SetTopSelling stores a ranking under the key with the cache TTL
func (c *AnalyticsCache) SetTopSelling(key repository.TopSellingCacheKey, value []repository.TopMedicine) {
	c.mu.Lock()
	c.topEntries[key] = topEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate removes every cached window for the given store
func (c *AnalyticsCache) Invalidate(storeID uuid.UUID) {
	c.mu.Lock()
	for key := range c.entries {
		if key.StoreID == storeID {
			delete(c.entries, key)
		}
	}
	for key := range c.topEntries {
		if key.StoreID == storeID {
			delete(c.topEntries, key)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of live entries, counting not-yet-swept expired ones
func (c *AnalyticsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries) + len(c.topEntries)
}

// Stop terminates the sweep goroutine
func (c *AnalyticsCache) Stop() {
	close(c.stop)
}

func (c *AnalyticsCache) sweep() {
	interval := c.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			for key, entry := range c.topEntries {
				if now.After(entry.expiresAt) {
					delete(c.topEntries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
