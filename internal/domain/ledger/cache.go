package ledger

import (
	"strings"
	"sync"
)

// Cache owns the in-memory ledger collection. It is the sole writer of its
// entries: REST fetches seed it, realtime notifications patch it. Exactly one
// entry exists per identifier at any time; insertion order is preserved for
// stable reads.
type Cache struct {
	mu      sync.Mutex
	order   []string
	entries map[string]Entry
}

// NewCache builds an empty ledger cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
	}
}

// Seed replaces the whole collection with the fetched entries. Last write
// wins: a stale fetch landing after a notification overwrites it, the same
// trade-off the dashboard always made.
func (c *Cache) Seed(entries []Entry) {
	c.mu.Lock()
	c.order = c.order[:0]
	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		c.upsertLocked(entry)
	}
	c.mu.Unlock()
}

// ApplyCreate inserts the entry. An identifier already present is overwritten
// in place, guarding against a duplicate notification racing a fetch.
func (c *Cache) ApplyCreate(entry Entry) {
	c.mu.Lock()
	c.upsertLocked(entry)
	c.mu.Unlock()
}

// ApplyUpdate replaces the entry with a matching identifier. An absent
// identifier behaves as a create, tolerating out-of-order delivery.
func (c *Cache) ApplyUpdate(entry Entry) {
	c.mu.Lock()
	c.upsertLocked(entry)
	c.mu.Unlock()
}

// ApplyDelete removes the entry with the given identifier. Unknown
// identifiers are ignored.
func (c *Cache) ApplyDelete(id string) {
	c.mu.Lock()
	if _, ok := c.entries[id]; ok {
		delete(c.entries, id)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()
}

// Clear empties the collection. It backs the delete-all notification.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.order = c.order[:0]
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}

// Len reports the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Get returns the entry with the given identifier.
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	return entry, ok
}

// Snapshot returns a copy of the collection in insertion order.
func (c *Cache) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// FilterByDescription returns the entries whose description contains the term,
// case-insensitive. An empty term matches everything.
func (c *Cache) FilterByDescription(term string) []Entry {
	snapshot := c.Snapshot()
	if term == "" {
		return snapshot
	}
	needle := strings.ToLower(term)
	out := snapshot[:0]
	for _, entry := range snapshot {
		if strings.Contains(strings.ToLower(entry.Description), needle) {
			out = append(out, entry)
		}
	}
	return out
}

func (c *Cache) upsertLocked(entry Entry) {
	if _, ok := c.entries[entry.ID]; !ok {
		c.order = append(c.order, entry.ID)
	}
	c.entries[entry.ID] = entry
}
