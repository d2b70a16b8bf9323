// Package log provides msgstore's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Records are routed through log/slog by
// a bridge handler that feeds our own formatter/output pipeline, so library
// code that speaks slog and our code share one output.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("tierstore"))
//	l.Info("retrieve", log.Int("id", 7), log.Str("tier", "cache"))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text or json
// format, console/file/null outputs).
//
// # Interop
//
// RedirectStdLog points the standard library logger (used by Pebble) at a
// Logger. Loggers are passed explicitly; there is no global default.
package log
