package snapshot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cachedSnapshot pairs a loaded snapshot with its build time.
type cachedSnapshot struct {
	snap  *Snapshot
	built time.Time
	ttl   time.Duration
}

// expired returns true if this entry has outlived its TTL.
func (c *cachedSnapshot) expired() bool {
	if c.ttl == 0 {
		return true // No caching
	}
	return time.Since(c.built) > c.ttl
}

// cacheStore holds cached snapshots keyed by bucket and object key.
type cacheStore struct {
	mu      sync.RWMutex
	entries map[string]*cachedSnapshot
	sf      singleflight.Group
}

// globalCacheStore is the singleton cache for all snapshot stores.
var globalCacheStore = &cacheStore{
	entries: make(map[string]*cachedSnapshot),
}

// Get returns the named snapshot, serving a cached copy while it is
// fresh. Concurrent loads of the same snapshot collapse into a single
// storage read via singleflight.
func (s *Store) Get(ctx context.Context, name string) (*Snapshot, error) {
	if s.ttl == 0 {
		return s.Load(ctx, name)
	}

	key := s.cacheKey(name)

	// Fast path: fresh cached entry
	globalCacheStore.mu.RLock()
	entry, exists := globalCacheStore.entries[key]
	globalCacheStore.mu.RUnlock()

	if exists && !entry.expired() {
		return entry.snap, nil
	}

	// Slow path: load under singleflight to prevent stampedes
	result, err, _ := globalCacheStore.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot
		globalCacheStore.mu.RLock()
		entry, exists := globalCacheStore.entries[key]
		globalCacheStore.mu.RUnlock()

		if exists && !entry.expired() {
			return entry.snap, nil
		}

		snap, err := s.Load(ctx, name)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.entries[key] = &cachedSnapshot{
			snap:  snap,
			built: time.Now(),
			ttl:   s.ttl,
		}
		globalCacheStore.mu.Unlock()

		return snap, nil
	})

	if err != nil {
		return nil, err
	}
	return result.(*Snapshot), nil
}

// invalidate removes a cached entry, forcing the next Get to reload.
func invalidate(key string) {
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.entries, key)
	globalCacheStore.mu.Unlock()
}
