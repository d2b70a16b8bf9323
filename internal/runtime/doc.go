// Package runtime wires configuration, the persistent log backend and the
// in-memory tiers into a single msgstore instance. The tiers start empty on
// every Open and are discarded on Close; only the log is durable.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	rec := tierstore.CreateRecord(1, "alice", "bob", "hi")
//	_ = rt.Store().Store(ctx, rec, rt.LogPath(), rt.Policy())
//	res, _ := rt.Store().Retrieve(ctx, 1, rt.LogPath(), rt.Policy())
package runtime
