package email

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/mailstat/internal/source"
)

// IMAPClient wraps go-imap v2 for connecting to and querying IMAP servers.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(
	host, port, username, password string, tls bool,
) *IMAPClient {
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// Connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout/Close on the returned client.
func (c *IMAPClient) Connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, &source.TransportError{
			Op:  "connect " + addr,
			Err: err,
		}
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &source.AuthError{
			Message: fmt.Sprintf(
				"authentication failed for %s: %v",
				c.username, err,
			),
		}
	}

	return client, nil
}

// Mailbox lists message metadata page by page over a live IMAP session.
// It implements source.Mailbox. The session is opened lazily on the
// first page request and stays open until Close.
type Mailbox struct {
	client *IMAPClient
	logger *log.Logger

	conn     *imapclient.Client
	selected string
	total    uint32
}

// NewMailbox creates a Mailbox over the given client configuration.
func NewMailbox(client *IMAPClient, logger *log.Logger) *Mailbox {
	return &Mailbox{
		client: client,
		logger: logger,
	}
}

// ListPage returns page pageIndex (0-based) of up to pageSize entries
// from folder, newest first. An empty result means the folder has no
// more pages.
func (m *Mailbox) ListPage(
	ctx context.Context,
	folder string,
	pageSize, pageIndex int,
) ([]source.MailEntry, error) {
	if m.conn == nil {
		conn, err := m.client.Connect(ctx)
		if err != nil {
			return nil, err
		}
		m.conn = conn
	}

	if m.selected != folder {
		data, err := m.conn.Select(folder, nil).Wait()
		if err != nil {
			return nil, &source.TransportError{
				Op:  "select " + folder,
				Err: err,
			}
		}
		m.selected = folder
		// The message count is captured once per folder so that mail
		// delivered mid-run cannot shift page boundaries between calls.
		m.total = data.NumMessages
		m.logger.Debug(
			"folder selected",
			"folder", folder,
			"messages", data.NumMessages,
		)
	}

	lo, hi, ok := pageBounds(m.total, pageSize, pageIndex)
	if !ok {
		return nil, nil
	}

	var seqSet imap.SeqSet
	seqSet.AddRange(lo, hi)

	fetchOpts := &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	}

	fetchCmd := m.conn.Fetch(seqSet, fetchOpts)
	defer fetchCmd.Close()

	var bufs []*imapclient.FetchMessageBuffer
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		bufs = append(bufs, buf)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, &source.TransportError{
			Op:  "fetch page",
			Err: err,
		}
	}

	// Higher sequence numbers are more recent; pages are newest first.
	sort.Slice(bufs, func(i, j int) bool {
		return bufs[i].SeqNum > bufs[j].SeqNum
	})

	entries := make([]source.MailEntry, 0, len(bufs))
	for _, buf := range bufs {
		entries = append(entries, entryFromBuffer(buf))
	}

	return entries, nil
}

// Close logs out of the IMAP session, if one was opened.
func (m *Mailbox) Close() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Logout().Wait()
	m.conn = nil
	m.selected = ""
	return err
}

// pageBounds maps a 0-based page of pageSize onto the sequence-number
// range [lo, hi] covering it, counting down from the newest message.
// ok is false when the page lies past the oldest message.
func pageBounds(total uint32, pageSize, pageIndex int) (lo, hi uint32, ok bool) {
	if total == 0 || pageSize <= 0 || pageIndex < 0 {
		return 0, 0, false
	}

	top := int64(total) - int64(pageIndex)*int64(pageSize)
	if top < 1 {
		return 0, 0, false
	}

	bottom := top - int64(pageSize) + 1
	if bottom < 1 {
		bottom = 1
	}

	return uint32(bottom), uint32(top), true
}

// entryFromBuffer extracts a MailEntry from a FetchMessageBuffer. A
// message whose date header the server could not parse keeps the zero
// timestamp; the sync engine discards it as erroneous.
func entryFromBuffer(buf *imapclient.FetchMessageBuffer) source.MailEntry {
	entry := source.MailEntry{
		ID: strconv.FormatUint(uint64(buf.UID), 10),
	}

	if buf.Envelope != nil {
		entry.MessageID = buf.Envelope.MessageID
		entry.Subject = buf.Envelope.Subject
		entry.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			entry.FromAddress = buf.Envelope.From[0].Addr()
		}
	}

	return entry
}
