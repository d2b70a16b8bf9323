package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nareb/msgstore/internal/cache"
	cfgpkg "github.com/nareb/msgstore/internal/config"
	"github.com/nareb/msgstore/internal/msglog"
	"github.com/nareb/msgstore/internal/replacement"
	"github.com/nareb/msgstore/internal/secondary"
	pebblestore "github.com/nareb/msgstore/internal/storage/pebble"
	"github.com/nareb/msgstore/internal/tierstore"
	logpkg "github.com/nareb/msgstore/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime owns the backend, tiers and logger for one process.
type Runtime struct {
	config  cfgpkg.Config
	logger  logpkg.Logger
	db      *pebblestore.DB
	backend msglog.Backend
	store   *tierstore.Store
	policy  replacement.Policy
	logPath string
}

// Open validates the config, prepares the data directory and wires the
// configured backend beneath a fresh, empty set of tiers.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	policy, err := replacement.Parse(cfg.Policy)
	if err != nil {
		return nil, err
	}
	fsync, err := pebblestore.ParseFsyncMode(cfg.Fsync)
	if err != nil {
		return nil, err
	}

	dataDir := cfg.ResolvedDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	rt := &Runtime{config: cfg, logger: logger, policy: policy, logPath: cfg.ResolvedLogPath()}
	switch cfg.Backend {
	case cfgpkg.BackendPebble:
		db, err := pebblestore.Open(pebblestore.Options{
			DataDir:       filepath.Join(dataDir, "store"),
			Fsync:         fsync,
			FsyncInterval: time.Duration(cfg.FsyncIntervalMs) * time.Millisecond,
			Metrics:       storageMetrics{logger: logger.With(logpkg.Component("pebble"))},
		})
		if err != nil {
			return nil, err
		}
		rt.db = db
		rt.backend = msglog.NewPebbleBackend(db)
	default:
		if dir := filepath.Dir(rt.logPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		rt.backend = msglog.NewFileBackend(msglog.FileOptions{Sync: fsync == pebblestore.FsyncModeAlways})
	}

	store, err := tierstore.New(tierstore.Options{
		Backend:   rt.backend,
		Cache:     cache.New(cfg.CacheCapacity),
		Secondary: secondary.New(cfg.SecondaryCapacity),
		Logger:    logger,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.store = store

	logger.Debug("runtime open",
		logpkg.Str("backend", cfg.Backend),
		logpkg.Str("log_path", rt.logPath),
		logpkg.Str("policy", policy.Name()),
		logpkg.Int("cache_capacity", cfg.CacheCapacity),
		logpkg.Int("secondary_capacity", cfg.SecondaryCapacity),
		logpkg.Str("fsync", fsync.String()),
	)
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// CheckHealth verifies the backend can be read.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.store == nil {
		return errors.New("runtime not open")
	}
	if r.db != nil {
		it, err := r.db.NewIter(nil)
		if err != nil {
			return err
		}
		return it.Close()
	}
	if _, err := os.Stat(r.logPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Store returns the tiered store.
func (r *Runtime) Store() *tierstore.Store { return r.store }

// Policy returns the configured replacement policy.
func (r *Runtime) Policy() replacement.Policy { return r.policy }

// LogPath returns the resolved log path handed to the backend.
func (r *Runtime) LogPath() string { return r.logPath }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the process logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// storageMetrics reports Pebble latencies at debug level.
type storageMetrics struct {
	logger logpkg.Logger
}

func (m storageMetrics) ObserveRead(elapsed time.Duration, bytes int) {
	m.logger.Debug("read", logpkg.Duration("elapsed", elapsed), logpkg.Int("bytes", bytes))
}

func (m storageMetrics) ObserveBatchCommit(elapsed time.Duration, bytes int) {
	m.logger.Debug("commit", logpkg.Duration("elapsed", elapsed), logpkg.Int("bytes", bytes))
}
