package event

import "sync"

// RegistrationCache holds registrations across all events, keyed by
// registration identifier. Deleting all registrations for one event leaves
// other events' registrations untouched.
type RegistrationCache struct {
	mu            sync.Mutex
	order         []string
	registrations map[string]Registration
}

// NewRegistrationCache builds an empty registration cache.
func NewRegistrationCache() *RegistrationCache {
	return &RegistrationCache{
		registrations: make(map[string]Registration),
	}
}

// SeedForEvent replaces the registrations of one event with the fetched set,
// leaving other events alone.
func (c *RegistrationCache) SeedForEvent(eventID string, registrations []Registration) {
	c.mu.Lock()
	c.removeWhereLocked(func(r Registration) bool { return r.EventID == eventID })
	for _, reg := range registrations {
		c.upsertLocked(reg)
	}
	c.mu.Unlock()
}

// ApplyCreate inserts the registration, overwriting an existing identifier.
func (c *RegistrationCache) ApplyCreate(reg Registration) {
	c.mu.Lock()
	c.upsertLocked(reg)
	c.mu.Unlock()
}

// ApplyUpdate replaces the matching registration, inserting when absent.
func (c *RegistrationCache) ApplyUpdate(reg Registration) {
	c.mu.Lock()
	c.upsertLocked(reg)
	c.mu.Unlock()
}

// ApplyDelete removes one registration.
func (c *RegistrationCache) ApplyDelete(id string) {
	c.mu.Lock()
	c.removeWhereLocked(func(r Registration) bool { return r.ID == id })
	c.mu.Unlock()
}

// DeleteAllForEvent removes only the registrations belonging to the given
// event.
func (c *RegistrationCache) DeleteAllForEvent(eventID string) {
	c.mu.Lock()
	c.removeWhereLocked(func(r Registration) bool { return r.EventID == eventID })
	c.mu.Unlock()
}

// Len reports the number of registrations across all events.
func (c *RegistrationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Get returns the registration with the given identifier.
func (c *RegistrationCache) Get(id string) (Registration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reg, ok := c.registrations[id]
	return reg, ok
}

// ForEvent returns the registrations of one event in insertion order.
func (c *RegistrationCache) ForEvent(eventID string) []Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Registration
	for _, id := range c.order {
		if reg := c.registrations[id]; reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	return out
}

// Snapshot returns a copy of all registrations in insertion order.
func (c *RegistrationCache) Snapshot() []Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Registration, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.registrations[id])
	}
	return out
}

func (c *RegistrationCache) upsertLocked(reg Registration) {
	if _, ok := c.registrations[reg.ID]; !ok {
		c.order = append(c.order, reg.ID)
	}
	c.registrations[reg.ID] = reg
}

func (c *RegistrationCache) removeWhereLocked(match func(Registration) bool) {
	kept := c.order[:0]
	for _, id := range c.order {
		if match(c.registrations[id]) {
			delete(c.registrations, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
}
