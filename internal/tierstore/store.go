package tierstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/nareb/msgstore/internal/cache"
	"github.com/nareb/msgstore/internal/message"
	"github.com/nareb/msgstore/internal/msglog"
	"github.com/nareb/msgstore/internal/replacement"
	"github.com/nareb/msgstore/internal/secondary"
	logpkg "github.com/nareb/msgstore/pkg/log"
)

// ErrNotFound is returned by Retrieve when no tier holds the id.
var ErrNotFound = msglog.ErrNotFound

// Tier names the level of the hierarchy that served a read.
type Tier int

const (
	TierNone Tier = iota
	TierCache
	TierSecondary
	TierDisk
)

func (t Tier) String() string {
	switch t {
	case TierCache:
		return "cache"
	case TierSecondary:
		return "secondary"
	case TierDisk:
		return "disk"
	default:
		return "none"
	}
}

// Result is a successful Retrieve.
type Result struct {
	Record message.Record
	Tier   Tier
	// Eviction describes the cache slot overwritten by a disk hit. It is the
	// zero value for other tiers.
	Eviction cache.Eviction
}

// Stats counts tier activity since the Store was created.
type Stats struct {
	Writes         uint64 `json:"writes"`
	WriteAdmits    uint64 `json:"writeAdmits"`
	WriteSkips     uint64 `json:"writeSkips"`
	CacheHits      uint64 `json:"cacheHits"`
	SecondaryHits  uint64 `json:"secondaryHits"`
	DiskHits       uint64 `json:"diskHits"`
	Misses         uint64 `json:"misses"`
	Evictions      uint64 `json:"evictions"`
	EvictedRecords uint64 `json:"evictedRecords"`
}

// Options configures a Store. Backend is required.
type Options struct {
	Backend msglog.Backend
	// Cache defaults to an empty cache of cache.DefaultCapacity.
	Cache *cache.Cache
	// Secondary is optional; nil or zero capacity skips the stage.
	Secondary *secondary.Tier
	Logger    logpkg.Logger
}

// Store is the tiered message store.
type Store struct {
	backend   msglog.Backend
	cache     *cache.Cache
	secondary *secondary.Tier
	logger    logpkg.Logger
	stats     Stats
}

// New builds a Store from opts.
func New(opts Options) (*Store, error) {
	if opts.Backend == nil {
		return nil, errors.New("tierstore: Options.Backend is required")
	}
	if opts.Cache == nil {
		opts.Cache = cache.New(cache.DefaultCapacity)
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	return &Store{
		backend:   opts.Backend,
		cache:     opts.Cache,
		secondary: opts.Secondary,
		logger:    opts.Logger.With(logpkg.Component("tierstore")),
	}, nil
}

// CreateRecord builds a new record with bounded text fields, the current
// creation time and Delivered=false.
func CreateRecord(id int32, sender, receiver, content string) message.Record {
	return message.New(id, sender, receiver, content)
}

// Store appends rec to the log at logPath, then caches it if a slot is free.
// The policy is accepted for symmetry with Retrieve; writes never evict.
func (s *Store) Store(ctx context.Context, rec message.Record, logPath string, _ replacement.Policy) error {
	if err := s.backend.Append(ctx, logPath, rec); err != nil {
		s.logger.Warn("append failed", logpkg.Int("id", int(rec.ID)), logpkg.Str("log", logPath), logpkg.Err(err))
		return fmt.Errorf("store %d: %w", rec.ID, err)
	}
	s.stats.Writes++

	if s.cache.InsertOnWrite(rec) {
		s.stats.WriteAdmits++
		s.logger.Debug("stored", logpkg.Int("id", int(rec.ID)), logpkg.Bool("cached", true))
	} else {
		s.stats.WriteSkips++
		s.logger.Debug("stored", logpkg.Int("id", int(rec.ID)), logpkg.Bool("cached", false))
	}
	return nil
}

// Retrieve looks id up in the cache, then the secondary tier, then the log at
// logPath. A log hit overwrites the cache slot chosen by policy (LRU when
// nil) and is promoted to the secondary tier when that tier is enabled.
//
// A log that cannot be read or is corrupt counts as a miss: the error wraps
// both ErrNotFound and the msglog cause. No tier is touched on a miss.
func (s *Store) Retrieve(ctx context.Context, id int32, logPath string, policy replacement.Policy) (Result, error) {
	if rec, ok := s.cache.Lookup(id); ok {
		s.stats.CacheHits++
		s.logger.Debug("retrieve", logpkg.Int("id", int(id)), logpkg.Str("tier", TierCache.String()))
		return Result{Record: rec, Tier: TierCache}, nil
	}

	if s.secondary.Enabled() {
		if rec, ok := s.secondary.Lookup(id); ok {
			s.stats.SecondaryHits++
			s.logger.Debug("retrieve", logpkg.Int("id", int(id)), logpkg.Str("tier", TierSecondary.String()))
			return Result{Record: rec, Tier: TierSecondary}, nil
		}
	}

	rec, err := s.backend.Scan(ctx, logPath, id)
	if err != nil {
		s.stats.Misses++
		if errors.Is(err, msglog.ErrNotFound) {
			s.logger.Debug("retrieve miss", logpkg.Int("id", int(id)))
			return Result{}, ErrNotFound
		}
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("retrieve %d: %w", id, err)
		}
		s.logger.Warn("log scan failed", logpkg.Int("id", int(id)), logpkg.Str("log", logPath), logpkg.Err(err))
		return Result{}, fmt.Errorf("retrieve %d: %w: %w", id, ErrNotFound, err)
	}

	if policy == nil {
		policy = replacement.LRU{}
	}
	ev := s.cache.InsertOnReadMiss(rec, policy)
	s.stats.DiskHits++
	s.stats.Evictions++
	if ev.HadRecord {
		s.stats.EvictedRecords++
	}
	s.secondary.Promote(rec)

	s.logger.Debug("retrieve",
		logpkg.Int("id", int(id)),
		logpkg.Str("tier", TierDisk.String()),
		logpkg.Str("policy", policy.Name()),
		logpkg.Int("slot", ev.Slot),
		logpkg.Bool("evicted", ev.HadRecord),
	)
	rec.CacheResident = true
	return Result{Record: rec, Tier: TierDisk, Eviction: ev}, nil
}

// Walk visits every record of the log at logPath in append order without
// touching any tier.
func (s *Store) Walk(ctx context.Context, logPath string, fn func(message.Record) error) error {
	return s.backend.Walk(ctx, logPath, fn)
}

// Resident reports whether id currently lives in the cache.
func (s *Store) Resident(id int32) bool { return s.cache.Resident(id) }

// Cache exposes the cache for diagnostics.
func (s *Store) Cache() *cache.Cache { return s.cache }

// Stats returns a copy of the activity counters.
func (s *Store) Stats() Stats { return s.stats }
