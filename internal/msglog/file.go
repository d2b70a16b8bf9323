package msglog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nareb/msgstore/internal/message"
)

// FileOptions configures a FileBackend.
type FileOptions struct {
	// Sync fsyncs the file after every append.
	Sync bool
	// Perm is used when the file is created. Defaults to 0o644.
	Perm os.FileMode
}

// FileBackend stores each log as a flat file of back-to-back records.
type FileBackend struct {
	opts FileOptions
}

// NewFileBackend returns a FileBackend.
func NewFileBackend(opts FileOptions) *FileBackend {
	if opts.Perm == 0 {
		opts.Perm = 0o644
	}
	return &FileBackend{opts: opts}
}

// Append opens path for appending, writes one encoded record and closes it.
func (b *FileBackend) Append(ctx context.Context, path string, rec message.Record) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, b.opts.Perm)
	if err != nil {
		return fmt.Errorf("%w: append: %w", ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIO, cerr)
		}
	}()

	n, err := f.Write(message.Encode(rec))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if n != message.RecordSize {
		return fmt.Errorf("%w: short write to %s: %d of %d bytes", ErrIO, path, n, message.RecordSize)
	}
	if b.opts.Sync {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	return nil
}

// Scan reads records from the start of path and returns the first whose id
// matches.
func (b *FileBackend) Scan(ctx context.Context, path string, id int32) (message.Record, error) {
	return scanWith(ctx, b, path, id)
}

// Walk reads path sequentially from the start.
func (b *FileBackend) Walk(ctx context.Context, path string, fn func(message.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 16*message.RecordSize)
	buf := make([]byte, message.RecordSize)
	for offset := int64(0); ; offset += message.RecordSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := message.ReadRecord(r, buf)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, message.ErrShortRecord):
			return fmt.Errorf("%w: %s at offset %d: %w", ErrCorrupt, path, offset, err)
		default:
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
