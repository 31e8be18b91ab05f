package cache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("cache entry not found")
	// ErrExpired is returned when a cache entry has expired
	ErrExpired = errors.New("cache entry expired")
)

// MemoryCache is an in-memory implementation of the ReputationCache
// interface with LRU eviction and per-entry TTL. It never holds more than
// its capacity in live entries; the least-recently-used entry is evicted
// first.
type MemoryCache struct {
	mu          sync.Mutex
	capacity    int
	items       map[string]*list.Element
	order       *list.List
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory reputation cache.
func NewMemoryCache(capacity int, logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = 100
	}
	c := &MemoryCache{
		capacity:    capacity,
		items:       make(map[string]*list.Element),
		order:       list.New(),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Background cleanup keeps expired entries from occupying capacity
	// between lookups.
	if cleanupFreq > 0 {
		go c.startCleanupTask()
	}

	return c
}

// Get retrieves a live entry for an identifier and marks it recently used.
func (c *MemoryCache) Get(ctx context.Context, identifier string) (*core.ReputationEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[identifier]
	if !ok {
		return nil, ErrNotFound
	}

	entry := elem.Value.(*core.ReputationEntry)
	if time.Now().After(entry.ExpiresAt) {
		c.removeElement(elem)
		return nil, ErrExpired
	}

	c.order.MoveToFront(elem)
	return entry, nil
}

// Set stores an entry, evicting the least-recently-used entry when the
// cache is at capacity.
func (c *MemoryCache) Set(ctx context.Context, entry *core.ReputationEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[entry.Identifier]; ok {
		c.order.MoveToFront(elem)
		elem.Value = entry
		return nil
	}

	elem := c.order.PushFront(entry)
	c.items[entry.Identifier] = elem

	for c.order.Len() > c.capacity {
		c.removeOldest()
	}
	return nil
}

// Delete removes a cache entry.
func (c *MemoryCache) Delete(ctx context.Context, identifier string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[identifier]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Cleanup removes expired entries.
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0

	var next *list.Element
	for elem := c.order.Front(); elem != nil; elem = next {
		next = elem.Next()
		if now.After(elem.Value.(*core.ReputationEntry).ExpiresAt) {
			c.removeElement(elem)
			expired++
		}
	}

	if expired > 0 {
		c.logger.Debug("cleaned up expired reputation entries", zap.Int("expired_count", expired))
	}
	return nil
}

// Len reports the number of live entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*core.ReputationEntry).Identifier)
}

func (c *MemoryCache) removeOldest() {
	if elem := c.order.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// startCleanupTask runs Cleanup on a fixed interval until Stop is called.
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task.
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
