package message

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// RecordSize is the encoded size of every record.
const RecordSize = 4 + SenderWidth + ReceiverWidth + ContentWidth + 8 + 4

const (
	offSender    = 4
	offReceiver  = offSender + SenderWidth
	offContent   = offReceiver + ReceiverWidth
	offCreatedAt = offContent + ContentWidth
	offDelivered = offCreatedAt + 8
)

// ErrShortRecord is returned when fewer than RecordSize bytes are available.
var ErrShortRecord = errors.New("short record")

// Encode writes r into a new RecordSize buffer.
func Encode(r Record) []byte {
	buf := make([]byte, RecordSize)
	EncodeTo(buf, r)
	return buf
}

// EncodeTo writes r into buf, which must be at least RecordSize bytes.
// Text longer than its field is truncated; shorter text is NUL-padded.
func EncodeTo(buf []byte, r Record) {
	_ = buf[RecordSize-1]
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.ID))
	putText(buf[offSender:offReceiver], r.Sender)
	putText(buf[offReceiver:offContent], r.Receiver)
	putText(buf[offContent:offCreatedAt], r.Content)
	binary.LittleEndian.PutUint64(buf[offCreatedAt:offDelivered], uint64(r.CreatedAt.Unix()))
	var delivered uint32
	if r.Delivered {
		delivered = 1
	}
	binary.LittleEndian.PutUint32(buf[offDelivered:RecordSize], delivered)
}

// Decode parses one record from b. CacheResident is always false.
func Decode(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, fmt.Errorf("%w: %d of %d bytes", ErrShortRecord, len(b), RecordSize)
	}
	return Record{
		ID:        int32(binary.LittleEndian.Uint32(b[0:4])),
		Sender:    getText(b[offSender:offReceiver]),
		Receiver:  getText(b[offReceiver:offContent]),
		Content:   getText(b[offContent:offCreatedAt]),
		CreatedAt: time.Unix(int64(binary.LittleEndian.Uint64(b[offCreatedAt:offDelivered])), 0),
		Delivered: binary.LittleEndian.Uint32(b[offDelivered:RecordSize]) != 0,
	}, nil
}

// DecodeID returns only the id of an encoded record.
func DecodeID(b []byte) (int32, error) {
	if len(b) < 4 {
		return 0, ErrShortRecord
	}
	return int32(binary.LittleEndian.Uint32(b[0:4])), nil
}

// ReadRecord reads exactly one record from r. It returns io.EOF when r is
// exhausted on a record boundary and an error wrapping ErrShortRecord when a
// record is cut off.
func ReadRecord(r io.Reader, buf []byte) (Record, error) {
	buf = buf[:RecordSize]
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		return Decode(buf)
	case errors.Is(err, io.EOF):
		return Record{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Record{}, fmt.Errorf("%w: %d of %d bytes", ErrShortRecord, n, RecordSize)
	default:
		return Record{}, err
	}
}

func putText(dst []byte, s string) {
	n := copy(dst, s)
	clear(dst[n:])
}

func getText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
