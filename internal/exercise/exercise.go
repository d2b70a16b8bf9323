// Package exercise drives repeated store and retrieve cycles against a
// tierstore.Store and reports how the tiers served the reads.
package exercise

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/nareb/msgstore/internal/cache"
	"github.com/nareb/msgstore/internal/replacement"
	"github.com/nareb/msgstore/internal/tierstore"
	logpkg "github.com/nareb/msgstore/pkg/log"
)

// Defaults used when Options leaves a count at zero.
const (
	DefaultMessages = 10
	DefaultAccesses = 1000
)

// Options controls a run.
type Options struct {
	// FirstID is the id of the first stored message; ids are consecutive.
	FirstID  int32
	Messages int
	Accesses int
	// Seed for the access pattern. Zero uses the current time.
	Seed   int64
	Logger logpkg.Logger
}

// Report summarises one run.
type Report struct {
	RunID    string `json:"runId"`
	Messages int    `json:"messages"`
	Accesses int    `json:"accesses"`

	// Access-phase tallies, by serving tier.
	CacheHits     int `json:"cacheHits"`
	SecondaryHits int `json:"secondaryHits"`
	DiskHits      int `json:"diskHits"`
	Misses        int `json:"misses"`
	// HitRatio is CacheHits / Accesses.
	HitRatio float64 `json:"hitRatio"`

	// MissingProbe is true when an id past the stored range was reported
	// as not found.
	MissingProbe bool `json:"missingProbe"`

	Elapsed time.Duration    `json:"elapsed"`
	Stats   tierstore.Stats  `json:"stats"`
	Cache   []cache.SlotInfo `json:"cache"`
}

// Run stores Messages records, reads each back once, then performs Accesses
// uniformly random reads over the stored ids.
func Run(ctx context.Context, s *tierstore.Store, logPath string, policy replacement.Policy, opts Options) (Report, error) {
	if opts.Messages <= 0 {
		opts.Messages = DefaultMessages
	}
	if opts.Accesses < 0 {
		return Report{}, fmt.Errorf("accesses must not be negative, got %d", opts.Accesses)
	}
	if opts.FirstID == 0 {
		opts.FirstID = 1
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	rep := Report{RunID: uuid.New().String(), Messages: opts.Messages, Accesses: opts.Accesses}
	logger := opts.Logger.With(logpkg.Component("exercise"), logpkg.Str("run_id", rep.RunID))
	start := time.Now()

	for i := 0; i < opts.Messages; i++ {
		id := opts.FirstID + int32(i)
		rec := tierstore.CreateRecord(id, "Sender", "Receiver", "Test Content")
		if err := s.Store(ctx, rec, logPath, policy); err != nil {
			return rep, err
		}
		if _, err := s.Retrieve(ctx, id, logPath, policy); err != nil {
			return rep, fmt.Errorf("read back %d: %w", id, err)
		}
	}
	logger.Debug("stored", logpkg.Int("messages", opts.Messages))

	rng := rand.New(rand.NewSource(opts.Seed))
	for i := 0; i < opts.Accesses; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		id := opts.FirstID + int32(rng.Intn(opts.Messages))
		res, err := s.Retrieve(ctx, id, logPath, policy)
		switch {
		case errors.Is(err, tierstore.ErrNotFound):
			rep.Misses++
			continue
		case err != nil:
			return rep, err
		}
		switch res.Tier {
		case tierstore.TierCache:
			rep.CacheHits++
		case tierstore.TierSecondary:
			rep.SecondaryHits++
		case tierstore.TierDisk:
			rep.DiskHits++
		}
	}
	if opts.Accesses > 0 {
		rep.HitRatio = float64(rep.CacheHits) / float64(opts.Accesses)
	}

	missing := opts.FirstID + int32(opts.Messages)
	_, err := s.Retrieve(ctx, missing, logPath, policy)
	switch {
	case errors.Is(err, tierstore.ErrNotFound):
		rep.MissingProbe = true
	case err != nil:
		return rep, err
	}

	rep.Elapsed = time.Since(start)
	rep.Stats = s.Stats()
	rep.Cache = s.Cache().Snapshot()
	logger.Info("exercise complete",
		logpkg.Int("cache_hits", rep.CacheHits),
		logpkg.Int("disk_hits", rep.DiskHits),
		logpkg.Int("misses", rep.Misses),
		logpkg.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}
