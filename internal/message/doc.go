// Package message defines the Record stored by msgstore and its fixed-width
// on-disk encoding.
//
// Every record encodes to exactly RecordSize bytes, little-endian, with no
// delimiters or checksum:
//
//	id        int32        4
//	sender    NUL-padded  50
//	receiver  NUL-padded  50
//	content   NUL-padded 500
//	createdAt int64        8  (Unix seconds)
//	delivered int32        4  (0 or 1)
//
// Text fields are bounded when a Record is built (see Bound), so an in-memory
// Record and its decoded copy always agree.
package message
