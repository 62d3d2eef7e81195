package enrich

import (
	"sync"
	"time"
)

// Record is the business profile produced for one payee. Text fields may be
// "不明" or empty when the model does not know; EnrichmentDate is the wall
// time the record was produced, formatted for direct inclusion in a row.
type Record struct {
	BusinessType        string `json:"business_type"`
	BusinessDescription string `json:"business_description"`
	EstablishmentYear   string `json:"establishment_year"`
	Capital             string `json:"capital"`
	Employees           string `json:"employees"`
	Website             string `json:"website"`
	Notes               string `json:"notes"`
	EnrichmentDate      string `json:"enrichment_date"`
}

// CacheStats is a point-in-time census of the cache, computed by scanning
// expiry timestamps against "now" at call time.
type CacheStats struct {
	Total   int
	Active  int
	Expired int
}

type cacheEntry struct {
	rec    Record
	expiry time.Time
}

// Cache maps a payee key to its enrichment record with a fixed TTL. Expired
// entries are never evicted, only ignored. The zero value is not usable;
// construct with NewCache.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached record for key if it has not expired.
func (c *Cache) Get(key string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiry) {
		return Record{}, false
	}
	return e.rec, true
}

// Put stores rec under key with expiry now+TTL. Failure records are never
// stored; that is the caller's contract, not the cache's.
func (c *Cache) Put(key string, rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{rec: rec, expiry: c.now().Add(c.ttl)}
}

// Stats counts total, active and expired entries at call time.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := CacheStats{Total: len(c.entries)}
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiry) {
			stats.Active++
		}
	}
	stats.Expired = stats.Total - stats.Active
	return stats
}
