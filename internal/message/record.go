package message

import (
	"strings"
	"time"
)

// Field widths in bytes.
const (
	SenderWidth   = 50
	ReceiverWidth = 50
	ContentWidth  = 500
)

// Record is a single message. Values are copied between tiers; no tier holds
// a reference to another tier's copy.
type Record struct {
	ID        int32     `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Delivered bool      `json:"delivered"`

	// CacheResident is true when this copy's record currently lives in the
	// fast cache. It is never persisted.
	CacheResident bool `json:"cacheResident"`
}

// Now is the clock used by New. Tests may replace it.
var Now = time.Now

// New builds a Record, bounding text fields and stamping the creation time.
// CreatedAt is kept at second resolution to match the on-disk value.
func New(id int32, sender, receiver, content string) Record {
	return Record{
		ID:        id,
		Sender:    Bound(sender, SenderWidth),
		Receiver:  Bound(receiver, ReceiverWidth),
		Content:   Bound(content, ContentWidth),
		CreatedAt: time.Unix(Now().Unix(), 0),
	}
}

// Bound returns s cut at its first NUL byte and then truncated to at most
// width bytes. Shorter values are returned unchanged.
func Bound(s string, width int) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) > width {
		s = s[:width]
	}
	return s
}

// Equal reports whether r and o hold the same persisted fields. CacheResident
// is ignored.
func (r Record) Equal(o Record) bool {
	return r.ID == o.ID &&
		r.Sender == o.Sender &&
		r.Receiver == o.Receiver &&
		r.Content == o.Content &&
		r.CreatedAt.Equal(o.CreatedAt) &&
		r.Delivered == o.Delivered
}
