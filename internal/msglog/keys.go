package msglog

import "encoding/binary"

// Keyspace helpers for the Pebble backend.
//
// Layout (byte-wise, lexicographically sortable):
// - log/{path}/m
// - log/{path}/e/{seq_be8}

var (
	logPrefix  = []byte("log/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// keyLogMeta builds the metadata key holding the last assigned sequence.
func keyLogMeta(path string) []byte {
	k := make([]byte, 0, len(logPrefix)+len(path)+len(metaSuffix))
	k = append(k, logPrefix...)
	k = append(k, path...)
	k = append(k, metaSuffix...)
	return k
}

// keyLogEntry builds an entry key with a big-endian sequence for ordering.
func keyLogEntry(path string, seq uint64) []byte {
	k := make([]byte, 0, len(logPrefix)+len(path)+len(entrySeg)+8)
	k = append(k, logPrefix...)
	k = append(k, path...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

// seqFromEntryKey extracts the sequence from an entry key.
func seqFromEntryKey(k []byte) uint64 {
	if len(k) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[len(k)-8:])
}
