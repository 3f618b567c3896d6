package sheets

import (
	"sync"
	"time"

	"github.com/worawit/breaklog/internal/ledger"
)

// entryCache holds the last full log listing for display reads. Writers must
// call Invalidate so the next read goes back to the service.
type entryCache struct {
	mu        sync.RWMutex
	entries   []ledger.LogEntry
	fetchedAt time.Time
	ttl       time.Duration
}

func newEntryCache(ttl time.Duration) *entryCache {
	return &entryCache{ttl: ttl}
}

func (c *entryCache) Get() []ledger.LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entries == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil
	}

	result := make([]ledger.LogEntry, len(c.entries))
	copy(result, c.entries)
	return result
}

func (c *entryCache) Set(entries []ledger.LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make([]ledger.LogEntry, len(entries))
	copy(c.entries, entries)
	c.fetchedAt = time.Now()
}

func (c *entryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
}
