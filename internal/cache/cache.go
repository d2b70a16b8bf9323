// Package cache implements the fixed-capacity fast tier.
//
// Admission is asymmetric. Writes take the first empty slot and are simply
// not cached when none is free. Reads that fell through to disk always evict:
// the replacement policy chooses the slot even when empty slots remain.
//
// A Cache is not safe for concurrent use.
package cache

import (
	"time"

	"github.com/nareb/msgstore/internal/message"
	"github.com/nareb/msgstore/internal/replacement"
)

// DefaultCapacity matches the classic 16-slot configuration.
const DefaultCapacity = 16

type slot struct {
	occupied   bool
	lastAccess time.Time
	record     message.Record
}

// SlotInfo is a read-only view of one slot.
type SlotInfo struct {
	Index      int
	Occupied   bool
	LastAccess time.Time
	ID         int32
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source used to stamp recency.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache holds up to Capacity records plus their recency metadata.
type Cache struct {
	slots []slot
	// access mirrors slots[i].lastAccess so policies get a slice without copying.
	access []time.Time
	now    func() time.Time
}

// New creates an empty cache with the given capacity. Capacities below one
// fall back to DefaultCapacity.
func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		slots:  make([]slot, capacity),
		access: make([]time.Time, capacity),
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Capacity returns the fixed number of slots.
func (c *Cache) Capacity() int { return len(c.slots) }

// Len returns the number of occupied slots.
func (c *Cache) Len() int {
	n := 0
	for i := range c.slots {
		if c.slots[i].occupied {
			n++
		}
	}
	return n
}

// Lookup returns a copy of the first occupied slot holding id and refreshes
// that slot's access time.
func (c *Cache) Lookup(id int32) (message.Record, bool) {
	for i := range c.slots {
		s := &c.slots[i]
		if s.occupied && s.record.ID == id {
			c.touch(i)
			r := s.record
			r.CacheResident = true
			return r, true
		}
	}
	return message.Record{}, false
}

// InsertOnWrite caches rec in the lowest-index empty slot. It reports false,
// leaving the cache unchanged, when every slot is occupied.
func (c *Cache) InsertOnWrite(rec message.Record) bool {
	for i := range c.slots {
		if !c.slots[i].occupied {
			c.put(i, rec)
			return true
		}
	}
	return false
}

// Eviction describes one InsertOnReadMiss cycle.
type Eviction struct {
	Slot int
	// Evicted is the record previously held by Slot; valid when HadRecord.
	Evicted   message.Record
	HadRecord bool
}

// InsertOnReadMiss overwrites the slot chosen by policy with rec. The policy is
// consulted whether or not empty slots exist. The displaced record is not
// written anywhere; it is already durable in the log.
func (c *Cache) InsertOnReadMiss(rec message.Record, policy replacement.Policy) Eviction {
	idx := policy.Victim(c.access)
	if idx < 0 || idx >= len(c.slots) {
		idx = 0
	}
	ev := Eviction{Slot: idx}
	if old := c.slots[idx]; old.occupied {
		ev.Evicted = old.record
		ev.Evicted.CacheResident = false
		ev.HadRecord = true
	}
	c.put(idx, rec)
	return ev
}

// Resident reports whether any slot holds id. It does not touch recency.
func (c *Cache) Resident(id int32) bool {
	for i := range c.slots {
		if c.slots[i].occupied && c.slots[i].record.ID == id {
			return true
		}
	}
	return false
}

// Snapshot returns the state of every slot in index order.
func (c *Cache) Snapshot() []SlotInfo {
	out := make([]SlotInfo, len(c.slots))
	for i, s := range c.slots {
		out[i] = SlotInfo{Index: i, Occupied: s.occupied, LastAccess: s.lastAccess}
		if s.occupied {
			out[i].ID = s.record.ID
		}
	}
	return out
}

// AccessTimes returns a copy of the per-slot access times. Empty slots
// report the zero time.
func (c *Cache) AccessTimes() []time.Time {
	out := make([]time.Time, len(c.access))
	copy(out, c.access)
	return out
}

func (c *Cache) put(i int, rec message.Record) {
	rec.CacheResident = true
	c.slots[i].record = rec
	c.slots[i].occupied = true
	c.touch(i)
}

func (c *Cache) touch(i int) {
	t := c.now()
	c.slots[i].lastAccess = t
	c.access[i] = t
}
