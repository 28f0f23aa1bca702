package model

import "time"

// ErroneousDate is the placeholder timestamp the mailbox backend emits
// for entries whose date header it could not parse. Any entry dated at
// or before this instant carries no usable timestamp.
var ErroneousDate = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry is the metadata of a single mailbox message as kept in the
// snapshot. Entries are immutable once constructed; the snapshot never
// deletes them selectively, only rewrites wholesale.
type Entry struct {
	// ID is the backend-assigned identifier for the message, opaque
	// to this program.
	ID string `json:"id"`

	// MessageID is the protocol-level unique identifier. It is the
	// dedup key: two entries with the same MessageID are the same
	// logical message.
	MessageID string `json:"message_id"`

	// FromAddress is the sender's mailbox address as reported by the
	// backend, unvalidated.
	FromAddress string `json:"from_addr"`

	// Subject is the message subject line.
	Subject string `json:"subject"`

	// Date is the message timestamp. The timezone offset it arrived
	// with is preserved through serialization.
	Date time.Time `json:"date"`
}

// Key returns the dedup key for the entry.
func (e Entry) Key() string {
	return e.MessageID
}

// Same reports whether two entries are the same logical message.
func (e Entry) Same(other Entry) bool {
	return e.MessageID == other.MessageID
}
