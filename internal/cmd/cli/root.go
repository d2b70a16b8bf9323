package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/nareb/msgstore/internal/config"
	"github.com/nareb/msgstore/internal/runtime"
	logpkg "github.com/nareb/msgstore/pkg/log"
)

// NewRoot constructs the root command with the global flags and every
// subcommand registered.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "msgstore",
		Short:         "Tiered message store",
		Long:          "msgstore appends fixed-size message records to a durable log and serves reads through an in-memory cache.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a JSON config file")
	pf.String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	pf.String("log-path", "", "Message log: file path, or log name for the pebble backend")
	pf.String("backend", "", "Log backend: file|pebble")
	pf.String("policy", "", "Replacement policy: lru|random")
	pf.Int("cache-capacity", 0, "Cache slots")
	pf.Int("secondary-capacity", 0, "Secondary tier slots (0 disables)")
	pf.String("fsync", "", "Fsync mode: always|interval|never (interval is pebble only)")
	pf.String("log-level", "", "Log level: debug|info|warn|error")
	pf.String("log-format", "", "Log format: text|json")

	root.AddCommand(
		newStoreCommand(),
		newRetrieveCommand(),
		newDumpCommand(),
		newExerciseCommand(),
	)
	return root
}

// loadConfig layers defaults, the config file, the environment and any flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, fmt.Errorf("load config: %w", err)
	}
	cfgpkg.FromEnv(&cfg)

	fs := cmd.Flags()
	strFlags := map[string]*string{
		"data-dir":   &cfg.DataDir,
		"log-path":   &cfg.LogPath,
		"backend":    &cfg.Backend,
		"policy":     &cfg.Policy,
		"fsync":      &cfg.Fsync,
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
	}
	for name, dst := range strFlags {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if fs.Changed("cache-capacity") {
		cfg.CacheCapacity, _ = fs.GetInt("cache-capacity")
	}
	if fs.Changed("secondary-capacity") {
		cfg.SecondaryCapacity, _ = fs.GetInt("secondary-capacity")
	}
	return cfg, nil
}

// openRuntime builds the process logger from cfg and opens the runtime. The
// caller must Close the result.
func openRuntime(cmd *cobra.Command) (*runtime.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logpkg.ApplyConfig(&cfg.Log)
	if err != nil {
		return nil, err
	}
	// Pebble logs through the standard library logger.
	logpkg.RedirectStdLog(logger)
	return runtime.Open(runtime.Options{Config: cfg, Logger: logger})
}
