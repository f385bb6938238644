package core

import (
	"github.com/user/bus-explorer-tui/pkg/models"
)

// Cache is the ordered, bounded window over the enriched log. It is rebuilt
// wholesale on full loads and appended on tail; appends past the cap evict
// the oldest records.
type Cache struct {
	max     int
	records []models.LogRecord
}

// NewCache builds an empty cache capped at max records.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = models.DefaultMaxCacheSize
	}
	return &Cache{max: max}
}

// Append adds records in order, evicting the oldest past the cap.
func (c *Cache) Append(recs ...models.LogRecord) {
	c.records = append(c.records, recs...)
	if over := len(c.records) - c.max; over > 0 {
		c.records = append(c.records[:0:0], c.records[over:]...)
	}
}

// Replace swaps the whole content, keeping only the newest max records.
func (c *Cache) Replace(recs []models.LogRecord) {
	c.records = c.records[:0]
	c.Append(recs...)
}

// Clear drops all records.
func (c *Cache) Clear() {
	c.records = nil
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return len(c.records)
}

// Records returns the cached records oldest first. The slice is borrowed;
// callers must not mutate or retain it across cache mutations.
func (c *Cache) Records() []models.LogRecord {
	return c.records
}
