package data

import (
	"sync"
	"time"

	"budget-impact/internal/model"
	"budget-impact/internal/projection"

	"github.com/google/uuid"
)

// CachedResult is a projection kept for later retrieval and export.
type CachedResult struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	Inputs    *model.Inputs
	Result    *projection.Result
}

// ResultCache holds projection results in memory under random ids.
// Entries expire after the TTL; a background goroutine drops them until Close.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*CachedResult
	ttl   time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &ResultCache{
		store: make(map[string]*CachedResult),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.cleanup(cleanupInterval(ttl))
	return c
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < 5*time.Minute {
		return ttl
	}
	return 5 * time.Minute
}

// Put stores res under a fresh id.
func (c *ResultCache) Put(in *model.Inputs, res *projection.Result) *CachedResult {
	now := time.Now()
	entry := &CachedResult{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
		Inputs:    in,
		Result:    res,
	}
	c.mu.Lock()
	c.store[entry.ID] = entry
	c.mu.Unlock()
	return entry
}

// Get retrieves an entry if present and not expired.
func (c *ResultCache) Get(id string) (*CachedResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[id]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine. Get and Put keep working.
func (c *ResultCache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *ResultCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *ResultCache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, id)
		}
	}
}
