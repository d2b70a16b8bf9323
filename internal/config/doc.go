// Package config provides loading and environment overlay for msgstore
// configuration.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/msgstore.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { /* handle */ }
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
package config
