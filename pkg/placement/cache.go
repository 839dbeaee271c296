package placement

import (
	"maps"
	"slices"
)

// Cache is a sparse position-indexed store of [Entry] values.
// The zero value is not usable; create one with [New].
type Cache struct {
	entries map[int]*Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[int]*Entry)}
}

// Get returns the entry at position, or nil.
func (c *Cache) Get(position int) *Entry {
	return c.entries[position]
}

// Put stores entry at position. A nil entry removes the position.
func (c *Cache) Put(position int, entry *Entry) {
	if entry == nil {
		delete(c.entries, position)
		return
	}
	c.entries[position] = entry
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Positions returns the cached positions in ascending order.
func (c *Cache) Positions() []int {
	return slices.Sorted(maps.Keys(c.entries))
}

// InvalidateAfter forgets the lane assignment of every entry at or after
// position. Span and size metadata is kept.
func (c *Cache) InvalidateAfter(position int) {
	for pos, e := range c.entries {
		if pos >= position {
			e.InvalidateLane()
		}
	}
}

// OffsetForInsertion shifts entries at or after position up by count.
func (c *Cache) OffsetForInsertion(position, count int) {
	if count <= 0 {
		return
	}
	next := make(map[int]*Entry, len(c.entries))
	for pos, e := range c.entries {
		if pos >= position {
			pos += count
		}
		next[pos] = e
	}
	c.entries = next
}

// OffsetForRemoval drops entries in [position, position+count) and shifts
// the entries after them down by count.
func (c *Cache) OffsetForRemoval(position, count int) {
	if count <= 0 {
		return
	}
	next := make(map[int]*Entry, len(c.entries))
	for pos, e := range c.entries {
		switch {
		case pos < position:
			next[pos] = e
		case pos >= position+count:
			next[pos-count] = e
		}
	}
	c.entries = next
}

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
}

// Clone returns a deep copy of c.
func (c *Cache) Clone() *Cache {
	out := &Cache{entries: make(map[int]*Entry, len(c.entries))}
	for pos, e := range c.entries {
		out.entries[pos] = e.Clone()
	}
	return out
}
