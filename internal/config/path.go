package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "msgstore"

// fallbackDataDir is used when no home directory can be determined.
const fallbackDataDir = "./data"

// hostEnv is the slice of the host DefaultDataDir consults.
type hostEnv struct {
	goos    string
	getenv  func(string) string
	homeDir func() (string, error)
}

var host = hostEnv{goos: runtime.GOOS, getenv: os.Getenv, homeDir: os.UserHomeDir}

// DefaultDataDir returns the per-user data directory for msgstore:
// $XDG_DATA_HOME/msgstore when set, otherwise the platform convention
// under the home directory, otherwise ./data.
func DefaultDataDir() string { return host.dataDir() }

func (h hostEnv) dataDir() string {
	if xdg := h.getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	if h.goos == "windows" {
		if local := h.getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appDirName)
		}
	}
	home, err := h.homeDir()
	if err != nil || home == "" {
		return fallbackDataDir
	}
	switch h.goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDirName)
	case "windows":
		return filepath.Join(home, "AppData", "Local", appDirName)
	default:
		return filepath.Join(home, ".local", "share", appDirName)
	}
}

// ResolvedDataDir returns DataDir or DefaultDataDir.
func (c Config) ResolvedDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return DefaultDataDir()
}

// ResolvedLogPath returns the log path handed to the backend. File logs are
// placed under the data dir unless absolute; pebble log names are used as is.
func (c Config) ResolvedLogPath() string {
	if c.Backend == BackendPebble || filepath.IsAbs(c.LogPath) {
		return c.LogPath
	}
	return filepath.Join(c.ResolvedDataDir(), c.LogPath)
}
