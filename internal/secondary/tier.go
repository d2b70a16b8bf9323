// Package secondary implements the in-memory tier consulted between the cache
// and the log. Records enter it only by promotion of disk hits; slots are
// reused in FIFO order once the tier is full.
package secondary

import "github.com/nareb/msgstore/internal/message"

// DefaultCapacity is the size used when the tier is enabled without an
// explicit capacity.
const DefaultCapacity = 100

// Tier is a fixed-capacity array of records. The zero value and a Tier of
// capacity zero are disabled: Promote is a no-op and Lookup always misses.
// A Tier is not safe for concurrent use.
type Tier struct {
	records []message.Record
	used    int
	next    int
}

// New returns a tier holding up to capacity records.
func New(capacity int) *Tier {
	if capacity < 0 {
		capacity = 0
	}
	return &Tier{records: make([]message.Record, capacity)}
}

// Enabled reports whether the tier can hold records.
func (t *Tier) Enabled() bool { return t != nil && len(t.records) > 0 }

// Len returns the number of populated slots.
func (t *Tier) Len() int {
	if t == nil {
		return 0
	}
	return t.used
}

// Lookup returns a copy of the first populated slot holding id.
func (t *Tier) Lookup(id int32) (message.Record, bool) {
	if t == nil {
		return message.Record{}, false
	}
	for i := 0; i < t.used; i++ {
		if t.records[i].ID == id {
			return t.records[i], true
		}
	}
	return message.Record{}, false
}

// Promote stores a copy of rec, overwriting the oldest promotion when full.
// A record already present with the same id is refreshed in place.
func (t *Tier) Promote(rec message.Record) {
	if !t.Enabled() {
		return
	}
	rec.CacheResident = false
	for i := 0; i < t.used; i++ {
		if t.records[i].ID == rec.ID {
			t.records[i] = rec
			return
		}
	}
	t.records[t.next] = rec
	t.next = (t.next + 1) % len(t.records)
	if t.used < len(t.records) {
		t.used++
	}
}
