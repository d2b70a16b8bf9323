// Package msglog implements the durable, append-only message log that backs
// the tiered store.
//
// # Overview
//
// A log is identified by a path and holds fixed-width encoded records (see
// package message) in append order. There is no index, no update in place and
// no tombstone: the same id may be appended many times, and Scan returns the
// first, oldest, match.
//
// Two backends are provided:
//   - FileBackend writes records back to back into a flat file at path,
//     opening and closing the file on every call.
//   - PebbleBackend keeps each log under its own key prefix in a Pebble DB:
//     log/{path}/m              (metadata: last seq)
//     log/{path}/e/{seq_be8}    (entries)
//     Values are record | crc32c(record).
//
// # Errors
//
// Failures wrap ErrIO (the log cannot be opened, read or written) or
// ErrCorrupt (a record is cut off or fails its checksum). A corrupt record
// aborts the scan; entries past it are unreachable for that call.
//
//	b := msglog.NewFileBackend(msglog.FileOptions{})
//	_ = b.Append(ctx, "messages.dat", rec)
//	got, err := b.Scan(ctx, "messages.dat", rec.ID)
//	if errors.Is(err, msglog.ErrNotFound) { /* miss */ }
package msglog
