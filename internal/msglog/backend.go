package msglog

import (
	"context"
	"errors"

	"github.com/nareb/msgstore/internal/message"
)

var (
	// ErrNotFound is returned by Scan when the log ends without a match.
	ErrNotFound = errors.New("message not found")
	// ErrIO reports that the log could not be opened, read or written.
	ErrIO = errors.New("message log io error")
	// ErrCorrupt reports a truncated or damaged record.
	ErrCorrupt = errors.New("message log corrupt")
	// errStop ends a Walk early without error.
	errStop = errors.New("stop walk")
)

// Backend is the persistent log seen by the tiered store.
type Backend interface {
	// Append adds rec at the end of the log at path.
	Append(ctx context.Context, path string, rec message.Record) error
	// Scan returns the first record in the log at path whose id matches.
	Scan(ctx context.Context, path string, id int32) (message.Record, error)
	// Walk calls fn for each record in append order. Returning a non-nil
	// error from fn stops the walk and returns that error.
	Walk(ctx context.Context, path string, fn func(message.Record) error) error
}

// scanWith implements Scan on top of Walk for both backends.
func scanWith(ctx context.Context, b Backend, path string, id int32) (message.Record, error) {
	var found message.Record
	err := b.Walk(ctx, path, func(r message.Record) error {
		if r.ID == id {
			found = r
			return errStop
		}
		return nil
	})
	switch {
	case errors.Is(err, errStop):
		return found, nil
	case err != nil:
		return message.Record{}, err
	default:
		return message.Record{}, ErrNotFound
	}
}
