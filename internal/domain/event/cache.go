package event

import (
	"strings"
	"sync"
)

// Cache holds the in-memory event collection, reconciled from fetches and
// realtime notifications under the same contract as the ledger cache: one
// event per identifier, upsert on create and update, insertion order kept.
type Cache struct {
	mu     sync.Mutex
	order  []string
	events map[string]Event
}

// NewCache builds an empty event cache.
func NewCache() *Cache {
	return &Cache{
		events: make(map[string]Event),
	}
}

// Seed replaces the whole collection. Last write wins.
func (c *Cache) Seed(events []Event) {
	c.mu.Lock()
	c.order = c.order[:0]
	c.events = make(map[string]Event, len(events))
	for _, ev := range events {
		c.upsertLocked(ev)
	}
	c.mu.Unlock()
}

// ApplyCreate inserts the event, overwriting an existing identifier in place.
func (c *Cache) ApplyCreate(ev Event) {
	c.mu.Lock()
	c.upsertLocked(ev)
	c.mu.Unlock()
}

// ApplyUpdate replaces the matching event, inserting when absent.
func (c *Cache) ApplyUpdate(ev Event) {
	c.mu.Lock()
	c.upsertLocked(ev)
	c.mu.Unlock()
}

// ApplyDelete removes one event.
func (c *Cache) ApplyDelete(id string) {
	c.mu.Lock()
	if _, ok := c.events[id]; ok {
		delete(c.events, id)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()
}

// Clear empties the collection.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.order = c.order[:0]
	c.events = make(map[string]Event)
	c.mu.Unlock()
}

// Len reports the number of events.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Get returns the event with the given identifier.
func (c *Cache) Get(id string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.events[id]
	return ev, ok
}

// Snapshot returns a copy of the collection in insertion order.
func (c *Cache) Snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.events[id])
	}
	return out
}

// FilterByTitle returns the events whose title contains the term,
// case-insensitive.
func (c *Cache) FilterByTitle(term string) []Event {
	snapshot := c.Snapshot()
	if term == "" {
		return snapshot
	}
	needle := strings.ToLower(term)
	out := snapshot[:0]
	for _, ev := range snapshot {
		if strings.Contains(strings.ToLower(ev.Title), needle) {
			out = append(out, ev)
		}
	}
	return out
}

func (c *Cache) upsertLocked(ev Event) {
	if _, ok := c.events[ev.ID]; !ok {
		c.order = append(c.order, ev.ID)
	}
	c.events[ev.ID] = ev
}
