package msglog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/nareb/msgstore/internal/message"
	pebblestore "github.com/nareb/msgstore/internal/storage/pebble"
)

// PebbleBackend stores every log path under its own key prefix in one DB.
// The DB is owned by the caller.
type PebbleBackend struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq map[string]uint64
}

// NewPebbleBackend returns a backend over db.
func NewPebbleBackend(db *pebblestore.DB) *PebbleBackend {
	return &PebbleBackend{db: db, lastSeq: make(map[string]uint64)}
}

// Append writes rec under the next sequence for path together with the
// updated metadata, as one batch.
func (b *PebbleBackend) Append(ctx context.Context, path string, rec message.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	last, err := b.loadLastSeq(path)
	if err != nil {
		return err
	}
	seq := last + 1

	batch := b.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(keyLogEntry(path, seq), encodeFrame(rec), nil); err != nil {
		return fmt.Errorf("%w: stage entry: %w", ErrIO, err)
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := batch.Set(keyLogMeta(path), meta[:], nil); err != nil {
		return fmt.Errorf("%w: stage meta: %w", ErrIO, err)
	}
	if err := b.db.CommitBatch(ctx, batch); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: commit %s: %w", ErrIO, path, err)
	}
	b.lastSeq[path] = seq
	return nil
}

// loadLastSeq returns the cached last sequence, reading metadata on first use.
func (b *PebbleBackend) loadLastSeq(path string) (uint64, error) {
	if seq, ok := b.lastSeq[path]; ok {
		return seq, nil
	}
	meta, err := b.db.Get(keyLogMeta(path))
	switch {
	case errors.Is(err, pebblestore.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("%w: read meta %s: %w", ErrIO, path, err)
	case len(meta) < 8:
		return 0, fmt.Errorf("%w: meta for %s is %d bytes", ErrCorrupt, path, len(meta))
	}
	seq := binary.BigEndian.Uint64(meta[:8])
	b.lastSeq[path] = seq
	return seq, nil
}

// Scan returns the record with the lowest sequence whose id matches.
func (b *PebbleBackend) Scan(ctx context.Context, path string, id int32) (message.Record, error) {
	return scanWith(ctx, b, path, id)
}

// Walk iterates entries of path in sequence order.
func (b *PebbleBackend) Walk(ctx context.Context, path string, fn func(message.Record) error) error {
	low := keyLogEntry(path, 0)
	hi := keyLogEntry(path, ^uint64(0))
	iter, err := b.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return fmt.Errorf("%w: iterate %s: %w", ErrIO, path, err)
	}
	defer iter.Close()

	for ok := iter.First(); ok; ok = iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, valid := decodeFrame(iter.Value())
		if !valid {
			return fmt.Errorf("%w: %s seq %d", ErrCorrupt, path, seqFromEntryKey(iter.Key()))
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("%w: iterate %s: %w", ErrIO, path, err)
	}
	return nil
}
