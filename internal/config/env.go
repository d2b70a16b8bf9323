package config

import (
	"os"
	"strconv"
)

// FromEnv overlays MSGSTORE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("MSGSTORE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MSGSTORE_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("MSGSTORE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("MSGSTORE_POLICY"); v != "" {
		cfg.Policy = v
	}
	if v := os.Getenv("MSGSTORE_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheCapacity = n
		}
	}
	if v := os.Getenv("MSGSTORE_SECONDARY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SecondaryCapacity = n
		}
	}
	if v := os.Getenv("MSGSTORE_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("MSGSTORE_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("MSGSTORE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MSGSTORE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
