// Package dedup provides a bounded, insertion-ordered set of processed
// comment identifiers.
//
// The cache prevents the bot from replying twice to the same comment
// across overlapping poll windows. Eviction is FIFO: identifiers are
// admitted at most once, so there is no recency to track, and the
// persisted order must match admission order exactly.
package dedup

import "container/list"

// DefaultCapacity is used when no capacity is configured.
const DefaultCapacity = 500

// Cache is a fixed-capacity set of identifiers with FIFO eviction.
// It is not safe for concurrent use; the bot loop is its single mutator.
type Cache struct {
	capacity int
	order    *list.List
	members  map[string]struct{}
}

// New creates an empty cache with the given capacity.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		members:  make(map[string]struct{}, capacity),
	}
}

// Restore creates a cache from a snapshot of identifiers, oldest first.
// Entries beyond the capacity are dropped from the oldest end, so a
// snapshot larger than the capacity keeps only the newest entries.
func Restore(capacity int, ids []string) *Cache {
	c := New(capacity)
	for _, id := range ids {
		if id == "" {
			continue
		}
		c.Admit(id)
	}
	return c
}

// Contains reports whether id has already been admitted and not yet evicted.
func (c *Cache) Contains(id string) bool {
	_, ok := c.members[id]
	return ok
}

// Admit inserts id as the most recent entry, evicting the oldest entry
// if the cache is at capacity. Admitting an id that is already present
// is a no-op; positions are never refreshed.
func (c *Cache) Admit(id string) {
	if _, ok := c.members[id]; ok {
		return
	}
	c.order.PushBack(id)
	c.members[id] = struct{}{}
	if c.order.Len() > c.capacity {
		front := c.order.Front()
		c.order.Remove(front)
		delete(c.members, front.Value.(string))
	}
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	return c.order.Len()
}

// Snapshot returns the entries in admission order, oldest first.
func (c *Cache) Snapshot() []string {
	ids := make([]string, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(string))
	}
	return ids
}
