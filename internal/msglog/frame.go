package msglog

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/nareb/msgstore/internal/message"
)

// Pebble values: encoded record | crc32c(record).

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

const frameSize = message.RecordSize + 4

func encodeFrame(rec message.Record) []byte {
	out := make([]byte, frameSize)
	message.EncodeTo(out, rec)
	binary.BigEndian.PutUint32(out[message.RecordSize:], crc32.Checksum(out[:message.RecordSize], castagnoli))
	return out
}

func decodeFrame(b []byte) (message.Record, bool) {
	if len(b) != frameSize {
		return message.Record{}, false
	}
	expect := binary.BigEndian.Uint32(b[message.RecordSize:])
	if crc32.Checksum(b[:message.RecordSize], castagnoli) != expect {
		return message.Record{}, false
	}
	rec, err := message.Decode(b[:message.RecordSize])
	if err != nil {
		return message.Record{}, false
	}
	return rec, true
}
