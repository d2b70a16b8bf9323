package exercise

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/nareb/msgstore/internal/cache"
	"github.com/nareb/msgstore/internal/msglog"
	"github.com/nareb/msgstore/internal/replacement"
	"github.com/nareb/msgstore/internal/tierstore"
	logpkg "github.com/nareb/msgstore/pkg/log"
)

func newStore(t *testing.T, capacity int) (*tierstore.Store, string) {
	t.Helper()
	s, err := tierstore.New(tierstore.Options{
		Backend: msglog.NewFileBackend(msglog.FileOptions{}),
		Cache:   cache.New(capacity),
		Logger:  logpkg.NewNopLogger(),
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, filepath.Join(t.TempDir(), "test_store.dat")
}

func TestRunAllCached(t *testing.T) {
	s, logPath := newStore(t, 16)
	rep, err := Run(context.Background(), s, logPath, replacement.LRU{}, Options{
		Messages: 10, Accesses: 200, Seed: 1, Logger: logpkg.NewNopLogger(),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := uuid.Parse(rep.RunID); err != nil {
		t.Fatalf("run id %q: %v", rep.RunID, err)
	}
	if rep.CacheHits != 200 || rep.DiskHits != 0 || rep.Misses != 0 {
		t.Fatalf("unexpected tallies: %+v", rep)
	}
	if rep.HitRatio != 1 {
		t.Fatalf("hit ratio = %v", rep.HitRatio)
	}
	if !rep.MissingProbe {
		t.Fatalf("id 11 should not exist")
	}
	if rep.Stats.Writes != 10 || rep.Stats.WriteAdmits != 10 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	if len(rep.Cache) != 16 {
		t.Fatalf("cache snapshot len = %d", len(rep.Cache))
	}
}

func TestRunSmallCacheFallsThroughToDisk(t *testing.T) {
	for _, p := range []replacement.Policy{replacement.LRU{}, replacement.NewRandom(3)} {
		t.Run(p.Name(), func(t *testing.T) {
			s, logPath := newStore(t, 2)
			rep, err := Run(context.Background(), s, logPath, p, Options{
				Messages: 10, Accesses: 300, Seed: 7, Logger: logpkg.NewNopLogger(),
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if rep.CacheHits+rep.DiskHits != rep.Accesses || rep.Misses != 0 {
				t.Fatalf("tallies do not add up: %+v", rep)
			}
			if rep.DiskHits == 0 || rep.HitRatio >= 1 {
				t.Fatalf("expected disk traffic with 2 slots and 10 ids: %+v", rep)
			}
			if rep.Stats.Evictions != rep.Stats.DiskHits {
				t.Fatalf("every disk hit must evict: %+v", rep.Stats)
			}
		})
	}
}

func TestRunRejectsNegativeAccesses(t *testing.T) {
	s, logPath := newStore(t, 2)
	if _, err := Run(context.Background(), s, logPath, nil, Options{Accesses: -1}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunHonoursCancel(t *testing.T) {
	s, logPath := newStore(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, s, logPath, nil, Options{Logger: logpkg.NewNopLogger()}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
