package tierstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nareb/msgstore/internal/cache"
	"github.com/nareb/msgstore/internal/message"
	"github.com/nareb/msgstore/internal/msglog"
	"github.com/nareb/msgstore/internal/replacement"
	"github.com/nareb/msgstore/internal/secondary"
	pebblestore "github.com/nareb/msgstore/internal/storage/pebble"
	logpkg "github.com/nareb/msgstore/pkg/log"
)

func tickClock() func() time.Time {
	t := time.Unix(1700000000, 0)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

type fixture struct {
	store   *Store
	logPath string
}

func newFixture(t *testing.T, capacity int, sec *secondary.Tier) fixture {
	t.Helper()
	s, err := New(Options{
		Backend:   msglog.NewFileBackend(msglog.FileOptions{}),
		Cache:     cache.New(capacity, cache.WithClock(tickClock())),
		Secondary: sec,
		Logger:    logpkg.NewNopLogger(),
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return fixture{store: s, logPath: filepath.Join(t.TempDir(), "message_store.dat")}
}

func (f fixture) put(t *testing.T, ids ...int32) {
	t.Helper()
	for _, id := range ids {
		rec := CreateRecord(id, "Sender", "Receiver", "Test Content")
		if err := f.store.Store(context.Background(), rec, f.logPath, replacement.LRU{}); err != nil {
			t.Fatalf("store %d: %v", id, err)
		}
	}
}

func (f fixture) get(t *testing.T, id int32, p replacement.Policy) Result {
	t.Helper()
	res, err := f.store.Retrieve(context.Background(), id, f.logPath, p)
	if err != nil {
		t.Fatalf("retrieve %d: %v", id, err)
	}
	if res.Record.ID != id {
		t.Fatalf("retrieve %d returned id %d", id, res.Record.ID)
	}
	return res
}

func seq(from, to int32) []int32 {
	var out []int32
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestNewRequiresBackend(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without backend")
	}
}

func TestStoreRetrieveRoundtrip(t *testing.T) {
	f := newFixture(t, 16, nil)
	want := CreateRecord(1, "Sender1", "Receiver1", "New, Day!")
	if err := f.store.Store(context.Background(), want, f.logPath, replacement.LRU{}); err != nil {
		t.Fatalf("store: %v", err)
	}
	res := f.get(t, 1, replacement.LRU{})
	if res.Tier != TierCache {
		t.Fatalf("tier = %v want cache", res.Tier)
	}
	if !res.Record.Equal(want) || !res.Record.CacheResident {
		t.Fatalf("got %+v want %+v", res.Record, want)
	}

	// same record straight from the log
	fromDisk, err := f.store.backend.Scan(context.Background(), f.logPath, 1)
	if err != nil || !fromDisk.Equal(want) {
		t.Fatalf("log copy = %+v, %v", fromDisk, err)
	}
}

func TestWritesNeverEvict(t *testing.T) {
	f := newFixture(t, 16, nil)
	f.put(t, seq(1, 17)...)

	st := f.store.Stats()
	if st.Writes != 17 || st.WriteAdmits != 16 || st.WriteSkips != 1 || st.Evictions != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if f.store.Resident(17) {
		t.Fatalf("write into a full cache must not be cached")
	}
	for id := int32(1); id <= 16; id++ {
		if !f.store.Resident(id) {
			t.Fatalf("id %d evicted by a write", id)
		}
	}
}

func TestLRUDiskFallbackScenario(t *testing.T) {
	f := newFixture(t, 16, nil)
	f.put(t, seq(1, 17)...)

	// 17 is only on disk; the hit evicts the oldest untouched slot, id 1.
	res := f.get(t, 17, replacement.LRU{})
	if res.Tier != TierDisk || res.Eviction.Evicted.ID != 1 {
		t.Fatalf("retrieve 17 = tier %v evicted %d", res.Tier, res.Eviction.Evicted.ID)
	}
	if f.store.Resident(1) {
		t.Fatalf("id 1 should have been evicted")
	}

	// 1 comes back from disk and pushes out the next LRU victim, id 2.
	res = f.get(t, 1, replacement.LRU{})
	if res.Tier != TierDisk || res.Eviction.Evicted.ID != 2 {
		t.Fatalf("retrieve 1 = tier %v evicted %d", res.Tier, res.Eviction.Evicted.ID)
	}
	if !f.store.Resident(1) || f.store.Resident(2) {
		t.Fatalf("cache not repopulated: %+v", f.store.Cache().Snapshot())
	}
}

func TestSecondRetrieveServedFromCache(t *testing.T) {
	f := newFixture(t, 16, nil)
	f.put(t, seq(1, 17)...)

	if res := f.get(t, 17, replacement.LRU{}); res.Tier != TierDisk {
		t.Fatalf("first retrieve tier = %v", res.Tier)
	}
	evictions := f.store.Stats().Evictions
	if res := f.get(t, 17, replacement.LRU{}); res.Tier != TierCache {
		t.Fatalf("second retrieve tier = %v", res.Tier)
	}
	if got := f.store.Stats().Evictions; got != evictions {
		t.Fatalf("cache hit caused an eviction: %d -> %d", evictions, got)
	}
}

func TestDiskHitAlwaysEvictsEvenWithFreeSlots(t *testing.T) {
	f := newFixture(t, 16, nil)
	f.put(t, 1)
	// 2 exists only in the log; slot 0 is chosen although slots 1..15 are free
	other := CreateRecord(2, "s", "r", "c")
	if err := f.store.backend.Append(context.Background(), f.logPath, other); err != nil {
		t.Fatalf("append: %v", err)
	}
	res := f.get(t, 2, slotZero{})
	if res.Tier != TierDisk || res.Eviction.Slot != 0 || res.Eviction.Evicted.ID != 1 {
		t.Fatalf("eviction = %+v", res.Eviction)
	}
	if f.store.Cache().Len() != 1 {
		t.Fatalf("free slots must stay free, len = %d", f.store.Cache().Len())
	}
	if st := f.store.Stats(); st.Evictions != 1 || st.EvictedRecords != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

type slotZero struct{}

func (slotZero) Victim([]time.Time) int { return 0 }
func (slotZero) Name() string           { return "slot-zero" }

func TestRandomEvictionKeepsRecordsRetrievable(t *testing.T) {
	f := newFixture(t, 4, nil)
	f.put(t, seq(1, 12)...)
	p := replacement.NewRandom(7)
	for round := 0; round < 3; round++ {
		for id := int32(1); id <= 12; id++ {
			f.get(t, id, p)
		}
	}
	if st := f.store.Stats(); st.Evictions != st.DiskHits {
		t.Fatalf("every disk hit must evict exactly once: %+v", st)
	}
	if f.store.Cache().Len() > f.store.Cache().Capacity() {
		t.Fatalf("occupancy exceeds capacity")
	}
}

func TestRetrieveNotFoundLeavesTiersUntouched(t *testing.T) {
	f := newFixture(t, 4, nil)
	f.put(t, 1, 2)
	before := f.store.Cache().Snapshot()

	_, err := f.store.Retrieve(context.Background(), 99, f.logPath, replacement.LRU{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if after := f.store.Cache().Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("cache mutated by a miss:\n%+v\n%+v", before, after)
	}
	if st := f.store.Stats(); st.Misses != 1 || st.Evictions != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestRetrieveUnreadableLogIsNotFound(t *testing.T) {
	f := newFixture(t, 4, nil)
	_, err := f.store.Retrieve(context.Background(), 1, f.logPath, replacement.LRU{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing log should read as not found, got %v", err)
	}
	if !errors.Is(err, msglog.ErrIO) {
		t.Fatalf("cause should be kept, got %v", err)
	}
	if f.store.Cache().Len() != 0 || f.store.Stats().Misses != 1 {
		t.Fatalf("cache mutated or miss not counted after io error")
	}
}

func TestRetrieveCorruptLogIsNotFound(t *testing.T) {
	f := newFixture(t, 4, nil)
	if err := os.WriteFile(f.logPath, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := f.store.Retrieve(context.Background(), 1, f.logPath, replacement.LRU{})
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, msglog.ErrCorrupt) {
		t.Fatalf("expected not found wrapping ErrCorrupt, got %v", err)
	}
}

func TestRetrieveCancelledIsNotAMiss(t *testing.T) {
	f := newFixture(t, 4, nil)
	f.put(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.store.Retrieve(ctx, 2, f.logPath, replacement.LRU{})
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected plain cancellation, got %v", err)
	}
}

func TestFreshLogNotFoundOnEveryBackend(t *testing.T) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	backends := []struct {
		name    string
		backend msglog.Backend
		logPath string
	}{
		{"file", msglog.NewFileBackend(msglog.FileOptions{}), filepath.Join(t.TempDir(), "message_store.dat")},
		{"pebble", msglog.NewPebbleBackend(db), "message_store"},
	}
	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(Options{Backend: tc.backend, Logger: logpkg.NewNopLogger()})
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			_, err = s.Retrieve(context.Background(), 5, tc.logPath, nil)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("fresh log: expected ErrNotFound, got %v", err)
			}
			if s.Cache().Len() != 0 {
				t.Fatalf("cache mutated on a fresh-log miss")
			}
		})
	}
}

func TestStoreFailureLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t, 4, nil)
	bad := filepath.Join(t.TempDir(), "no-such-dir", "log.dat")
	err := f.store.Store(context.Background(), CreateRecord(1, "s", "r", "c"), bad, replacement.LRU{})
	if !errors.Is(err, msglog.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if f.store.Resident(1) || f.store.Stats().Writes != 0 {
		t.Fatalf("failed write reached the cache")
	}
}

func TestSecondaryTierServesPromotedRecords(t *testing.T) {
	f := newFixture(t, 1, secondary.New(8))
	f.put(t, 1, 2) // 1 cached, 2 only on disk

	if res := f.get(t, 2, replacement.LRU{}); res.Tier != TierDisk {
		t.Fatalf("retrieve 2 tier = %v", res.Tier)
	}
	// 1 lost the only cache slot to 2 and has not been promoted yet
	if res := f.get(t, 1, replacement.LRU{}); res.Tier != TierDisk {
		t.Fatalf("retrieve 1 tier = %v", res.Tier)
	}
	// 2 was promoted on its disk hit, so it no longer needs the log
	res := f.get(t, 2, replacement.LRU{})
	if res.Tier != TierSecondary || res.Record.CacheResident {
		t.Fatalf("retrieve 2 again = tier %v resident %v", res.Tier, res.Record.CacheResident)
	}
	if st := f.store.Stats(); st.SecondaryHits != 1 || st.DiskHits != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestPebbleBackendParity(t *testing.T) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(Options{
		Backend: msglog.NewPebbleBackend(db),
		Cache:   cache.New(16, cache.WithClock(tickClock())),
		Logger:  logpkg.NewNopLogger(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	f := fixture{store: s, logPath: "message_store"}
	f.put(t, seq(1, 17)...)

	res := f.get(t, 17, replacement.LRU{})
	if res.Tier != TierDisk || res.Eviction.Evicted.ID != 1 {
		t.Fatalf("retrieve 17 = tier %v evicted %d", res.Tier, res.Eviction.Evicted.ID)
	}
	if res := f.get(t, 1, replacement.LRU{}); res.Tier != TierDisk {
		t.Fatalf("retrieve 1 tier = %v", res.Tier)
	}
}

func TestTierString(t *testing.T) {
	want := map[Tier]string{TierNone: "none", TierCache: "cache", TierSecondary: "secondary", TierDisk: "disk"}
	for tier, s := range want {
		if tier.String() != s {
			t.Fatalf("%d.String() = %q", tier, tier.String())
		}
	}
}

func TestWalkDoesNotTouchCache(t *testing.T) {
	f := newFixture(t, 2, nil)
	f.put(t, 1, 2, 3)
	before := f.store.Cache().Snapshot()
	n := 0
	err := f.store.Walk(context.Background(), f.logPath, func(message.Record) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if n != 3 {
		t.Fatalf("walked %d records", n)
	}
	if !reflect.DeepEqual(before, f.store.Cache().Snapshot()) {
		t.Fatalf("walk changed the cache")
	}
}
