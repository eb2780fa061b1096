package stock

import (
	"context"
	"sync"
	"time"

	"backoffice/internal/core/types"
)

// balanceKey identifies one memoized stock figure.
type balanceKey struct {
	itemName    string
	warehouseID string
}

// BalanceCache memoizes reconciled stock per (item, warehouse) key.
// Entries have no TTL; staleness is an accepted risk and the cache lives
// only until an explicit refetch or the owning invoice resets. It is
// owned by a single invoice builder and needs no locking.
type BalanceCache struct {
	entries map[balanceKey]types.Money
}

// NewBalanceCache creates an empty cache.
func NewBalanceCache() *BalanceCache {
	return &BalanceCache{entries: make(map[balanceKey]types.Money)}
}

// Get returns the memoized quantity and whether it was present.
func (c *BalanceCache) Get(itemName, warehouseID string) (types.Money, bool) {
	qty, ok := c.entries[balanceKey{itemName, warehouseID}]
	return qty, ok
}

// Put stores a reconciled quantity.
func (c *BalanceCache) Put(itemName, warehouseID string, qty types.Money) {
	c.entries[balanceKey{itemName, warehouseID}] = qty
}

// Len returns the number of memoized keys.
func (c *BalanceCache) Len() int {
	return len(c.entries)
}

// Reset drops every entry.
func (c *BalanceCache) Reset() {
	c.entries = make(map[balanceKey]types.Money)
}

// DefaultCatalogTTL is how long a fetched item catalog stays fresh.
const DefaultCatalogTTL = 5 * time.Minute

// CatalogCache is an unrelated, process-level cache for catalog listings
// with expiry measured from the last successful fetch. Unlike BalanceCache
// it is shared across requests, so it guards itself with a mutex.
type CatalogCache[T any] struct {
	ttl   time.Duration
	fetch func(ctx context.Context) ([]T, error)

	mu        sync.Mutex
	value     []T
	fetchedAt time.Time
}

// NewCatalogCache creates a cache around fetch with the given TTL.
func NewCatalogCache[T any](ttl time.Duration, fetch func(ctx context.Context) ([]T, error)) *CatalogCache[T] {
	return &CatalogCache[T]{ttl: ttl, fetch: fetch}
}

// Get returns the cached listing when fresh, fetching otherwise.
// Only a successful fetch restamps the expiry clock. The returned slice is
// a copy; mutating it cannot corrupt the shared cache.
func (c *CatalogCache[T]) Get(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.snapshot(), nil
	}

	return c.refetch(ctx)
}

// Refresh bypasses the TTL and fetches unconditionally.
func (c *CatalogCache[T]) Refresh(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.refetch(ctx)
}

// Invalidate drops the cached value without fetching.
func (c *CatalogCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = nil
	c.fetchedAt = time.Time{}
}

func (c *CatalogCache[T]) refetch(ctx context.Context) ([]T, error) {
	value, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.value = value
	c.fetchedAt = time.Now()
	return c.snapshot(), nil
}

// snapshot copies the cached slice. Callers receive their own backing
// array; the cache keeps the original.
func (c *CatalogCache[T]) snapshot() []T {
	out := make([]T, len(c.value))
	copy(out, c.value)
	return out
}
