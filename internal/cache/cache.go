// Package cache provides the in-process session cache for incident queries.
package cache

import (
	"fmt"
	"sync"

	"github.com/civicsignal/incident-feed/internal/domain"
)

// SessionCache stores fetched record lists keyed by (rounded latitude,
// rounded longitude, month). Coordinates are rounded to 3 decimal degrees
// (~110 m) so near-identical queries hit the same cell. Entries live for the
// process session: no TTL, no eviction, last write wins. Unbounded growth is
// acceptable because the key space is |tiles| x |window months| for one fixed
// region.
//
// Safe for concurrent use; parallel tile fetches share one instance.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[string][]domain.Incident
}

// New creates an empty session cache. Inject one per pipeline so tests get
// isolated instances.
func New() *SessionCache {
	return &SessionCache{entries: make(map[string][]domain.Incident)}
}

// Get returns the cached record list for a cell, if present. An empty cached
// list is a valid hit: known-empty cells are not re-queried within a session.
func (c *SessionCache) Get(lat, lon float64, month string) ([]domain.Incident, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, ok := c.entries[cellKey(lat, lon, month)]
	return records, ok
}

// Set stores a record list for a cell, replacing any previous entry.
func (c *SessionCache) Set(lat, lon float64, month string, records []domain.Incident) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cellKey(lat, lon, month)] = records
}

// Len reports the number of cached cells.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func cellKey(lat, lon float64, month string) string {
	return fmt.Sprintf("%.3f,%.3f|%s", lat, lon, month)
}
