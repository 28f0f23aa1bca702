package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/mailstat/internal/model"
)

// TransportError indicates a protocol or network failure while talking
// to the mailbox or to the outbound mail server. It is fatal for the
// phase that produced it.
type TransportError struct {
	// Op names the operation that failed (e.g. "list page").
	Op string

	// Err is the underlying failure.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// AuthError indicates that authentication was rejected by a server.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// MailEntry is one message's metadata as exposed by the mailbox
// transport, before it becomes a snapshot entry.
type MailEntry struct {
	// ID is the backend-assigned identifier for the message.
	ID string

	// MessageID is the protocol-level unique identifier.
	MessageID string

	// FromAddress is the sender's mailbox address.
	FromAddress string

	// Subject is the message subject line.
	Subject string

	// Date is the message timestamp as parsed by the backend. A zero
	// or epoch-era value means the backend could not parse it.
	Date time.Time
}

// Record converts the mail entry into a snapshot entry, copying every
// field verbatim. No validation happens here; filtering is the sync
// engine's job.
func (m MailEntry) Record() model.Entry {
	return model.Entry{
		ID:          m.ID,
		MessageID:   m.MessageID,
		FromAddress: m.FromAddress,
		Subject:     m.Subject,
		Date:        m.Date,
	}
}

// Mailbox lists message metadata page by page, newest first.
type Mailbox interface {
	// ListPage returns page pageIndex (0-based) of up to pageSize
	// entries from folder, ordered reverse-chronologically. An empty
	// page means the mailbox is exhausted.
	ListPage(
		ctx context.Context,
		folder string,
		pageSize, pageIndex int,
	) ([]MailEntry, error)
}

// Attachment is a binary attachment on an outgoing message.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

// OutgoingMessage is a composed report message ready for delivery.
type OutgoingMessage struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string

	// Attachment is optional.
	Attachment *Attachment
}

// MailSender delivers a composed message.
type MailSender interface {
	Send(ctx context.Context, msg OutgoingMessage) error
}
