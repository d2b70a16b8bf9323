package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nareb/msgstore/internal/cache"
	"github.com/nareb/msgstore/internal/replacement"
	pebblestore "github.com/nareb/msgstore/internal/storage/pebble"
	logpkg "github.com/nareb/msgstore/pkg/log"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendPebble = "pebble"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// DataDir holds the Pebble store and relative file logs. Empty means
	// DefaultDataDir().
	DataDir string `json:"dataDir"`
	// LogPath names the message log: a file (relative to DataDir unless
	// absolute) for the file backend, a log name for the pebble backend.
	LogPath string `json:"logPath"`
	Backend string `json:"backend"`
	Policy  string `json:"policy"`

	CacheCapacity     int `json:"cacheCapacity"`
	SecondaryCapacity int `json:"secondaryCapacity"`

	Fsync           string `json:"fsync"`
	FsyncIntervalMs int    `json:"fsyncIntervalMs"`

	Log logpkg.Config `json:"log"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		LogPath:           "message_store.dat",
		Backend:           BackendFile,
		Policy:            "lru",
		CacheCapacity:     cache.DefaultCapacity,
		SecondaryCapacity: 0,
		Fsync:             "always",
		FsyncIntervalMs:   5,
		Log: logpkg.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a JSON file over the defaults. If path is
// empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerations and bounds.
func (c Config) Validate() error {
	var errs []error
	if c.LogPath == "" {
		errs = append(errs, errors.New("logPath is required"))
	}
	switch c.Backend {
	case BackendFile, BackendPebble:
	default:
		errs = append(errs, fmt.Errorf("backend %q; use file|pebble", c.Backend))
	}
	if _, err := replacement.Parse(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if c.CacheCapacity <= 0 {
		errs = append(errs, fmt.Errorf("cacheCapacity must be positive, got %d", c.CacheCapacity))
	}
	if c.SecondaryCapacity < 0 {
		errs = append(errs, fmt.Errorf("secondaryCapacity must not be negative, got %d", c.SecondaryCapacity))
	}
	if mode, err := pebblestore.ParseFsyncMode(c.Fsync); err != nil {
		errs = append(errs, err)
	} else if mode == pebblestore.FsyncModeInterval && c.Backend == BackendFile {
		// file appends sync per record or not at all
		errs = append(errs, errors.New("fsync interval needs the pebble backend; use always|never with file"))
	}
	if _, err := logpkg.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
