// Package tierstore composes the cache, the secondary tier and the persistent
// log into one read/write protocol.
//
// Writes append to the log first and then try to cache the record in a free
// slot; a full cache never causes an eviction on write and never fails the
// write. Reads walk the tiers in order and stop at the first hit:
//
//	cache -> secondary -> log scan -> evict one cache slot, insert -> return
//
// A read served by the log always costs exactly one eviction cycle, chosen by
// the replacement policy passed to that call, even when the cache has free
// slots.
//
//	s, _ := tierstore.New(tierstore.Options{Backend: msglog.NewFileBackend(msglog.FileOptions{})})
//	rec := tierstore.CreateRecord(1, "alice", "bob", "hi")
//	_ = s.Store(ctx, rec, "messages.dat", replacement.LRU{})
//	res, err := s.Retrieve(ctx, 1, "messages.dat", replacement.LRU{})
//
// A Store is not safe for concurrent use.
package tierstore
