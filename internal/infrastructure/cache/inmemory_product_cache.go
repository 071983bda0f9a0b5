package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/backend/internal/domain/catalog"
)

// InMemoryProductCache implements ProductCache with a process-local map.
// Suitable for single-instance deployments and tests; entries do not share
// state across processes.
type InMemoryProductCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryEntry
	ttl     time.Duration
}

type inMemoryEntry struct {
	product   catalog.Product
	expiresAt time.Time
}

// NewInMemoryProductCache creates a new in-memory product cache
func NewInMemoryProductCache(ttl time.Duration) *InMemoryProductCache {
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	return &InMemoryProductCache{
		entries: make(map[uuid.UUID]inMemoryEntry),
		ttl:     ttl,
	}
}

// Get retrieves a product, returning (nil, nil) on miss or expiry
func (c *InMemoryProductCache) Get(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		return nil, nil
	}
	copied := entry.product
	return &copied, nil
}

// Set stores a product
func (c *InMemoryProductCache) Set(_ context.Context, product *catalog.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[product.ID] = inMemoryEntry{
		product:   *product,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate removes a product
func (c *InMemoryProductCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

var _ ProductCache = (*InMemoryProductCache)(nil)
