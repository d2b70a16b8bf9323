package cache

import (
	"testing"
	"time"

	"github.com/nareb/msgstore/internal/message"
	"github.com/nareb/msgstore/internal/replacement"
)

// tickClock returns strictly increasing times so recency is unambiguous.
func tickClock() func() time.Time {
	t := time.Unix(1700000000, 0)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func rec(id int32) message.Record {
	return message.Record{ID: id, Sender: "s", Receiver: "r", Content: "c"}
}

// fixedPolicy always returns the same slot and counts calls.
type fixedPolicy struct {
	slot  int
	calls int
}

func (p *fixedPolicy) Victim([]time.Time) int {
	p.calls++
	return p.slot
}

func (p *fixedPolicy) Name() string { return "fixed" }

func TestInsertOnWriteFillsLowestEmptySlot(t *testing.T) {
	c := New(3, WithClock(tickClock()))
	for id := int32(1); id <= 3; id++ {
		if !c.InsertOnWrite(rec(id)) {
			t.Fatalf("insert %d should succeed", id)
		}
	}
	for i, s := range c.Snapshot() {
		if !s.Occupied || s.ID != int32(i+1) {
			t.Fatalf("slot %d = %+v", i, s)
		}
	}
}

func TestInsertOnWriteNeverEvicts(t *testing.T) {
	c := New(2, WithClock(tickClock()))
	c.InsertOnWrite(rec(1))
	c.InsertOnWrite(rec(2))
	if c.InsertOnWrite(rec(3)) {
		t.Fatalf("insert into full cache must report false")
	}
	if c.Resident(3) || !c.Resident(1) || !c.Resident(2) {
		t.Fatalf("full cache changed on write: %+v", c.Snapshot())
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestLookupRefreshesRecencyAndCopies(t *testing.T) {
	c := New(2, WithClock(tickClock()))
	c.InsertOnWrite(rec(1))
	c.InsertOnWrite(rec(2))
	before := c.Snapshot()[0].LastAccess

	got, ok := c.Lookup(1)
	if !ok || got.ID != 1 || !got.CacheResident {
		t.Fatalf("lookup = %+v, %v", got, ok)
	}
	if !c.Snapshot()[0].LastAccess.After(before) {
		t.Fatalf("lookup did not refresh recency")
	}

	got.Content = "mutated"
	again, _ := c.Lookup(1)
	if again.Content != "c" {
		t.Fatalf("lookup returned a reference, not a copy")
	}
}

func TestLookupMiss(t *testing.T) {
	c := New(2)
	if _, ok := c.Lookup(9); ok {
		t.Fatalf("empty cache must miss")
	}
}

func TestInsertOnReadMissAlwaysConsultsPolicy(t *testing.T) {
	c := New(4, WithClock(tickClock()))
	c.InsertOnWrite(rec(1))
	p := &fixedPolicy{slot: 0}

	ev := c.InsertOnReadMiss(rec(9), p)
	if p.calls != 1 {
		t.Fatalf("policy calls = %d", p.calls)
	}
	if ev.Slot != 0 || !ev.HadRecord || ev.Evicted.ID != 1 {
		t.Fatalf("eviction = %+v", ev)
	}
	if c.Resident(1) || !c.Resident(9) {
		t.Fatalf("slot 0 not overwritten: %+v", c.Snapshot())
	}
	if c.Len() != 1 {
		t.Fatalf("empty slots must stay empty, len = %d", c.Len())
	}
}

func TestInsertOnReadMissLRUTakesEmptySlotFirst(t *testing.T) {
	c := New(3, WithClock(tickClock()))
	c.InsertOnWrite(rec(1))
	ev := c.InsertOnReadMiss(rec(2), replacement.LRU{})
	if ev.Slot != 1 || ev.HadRecord {
		t.Fatalf("eviction = %+v, want empty slot 1", ev)
	}
}

func TestInsertOnReadMissLRUSparesRecentlyUsed(t *testing.T) {
	const n = 16
	c := New(n, WithClock(tickClock()))
	for id := int32(1); id <= n; id++ {
		c.InsertOnWrite(rec(id))
	}
	c.Lookup(1)
	ev := c.InsertOnReadMiss(rec(100), replacement.LRU{})
	if ev.Evicted.ID != 2 {
		t.Fatalf("evicted %d, want 2 (1 was just used)", ev.Evicted.ID)
	}
	if !c.Resident(1) {
		t.Fatalf("recently used id 1 evicted")
	}
}

func TestInsertOnReadMissClampsBadPolicy(t *testing.T) {
	c := New(2, WithClock(tickClock()))
	ev := c.InsertOnReadMiss(rec(5), &fixedPolicy{slot: 7})
	if ev.Slot != 0 || !c.Resident(5) {
		t.Fatalf("out of range victim not clamped: %+v", ev)
	}
}

func TestNewDefaultsCapacity(t *testing.T) {
	if got := New(0).Capacity(); got != DefaultCapacity {
		t.Fatalf("capacity = %d", got)
	}
}

func TestAccessTimesIsACopy(t *testing.T) {
	c := New(2, WithClock(tickClock()))
	c.InsertOnWrite(rec(1))
	at := c.AccessTimes()
	if at[0].IsZero() || !at[1].IsZero() {
		t.Fatalf("access times = %v", at)
	}
	at[0] = time.Time{}
	if c.AccessTimes()[0].IsZero() {
		t.Fatalf("caller mutation leaked into cache")
	}
}
