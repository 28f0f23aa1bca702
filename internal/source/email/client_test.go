package email

import (
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/nalgeon/be"
)

func TestPageBounds(t *testing.T) {
	cases := []struct {
		name      string
		total     uint32
		pageSize  int
		pageIndex int
		lo, hi    uint32
		ok        bool
	}{
		{"first page of many", 250, 100, 0, 151, 250, true},
		{"second page", 250, 100, 1, 51, 150, true},
		{"short final page", 250, 100, 2, 1, 50, true},
		{"past the oldest message", 250, 100, 3, 0, 0, false},
		{"exact fit", 100, 100, 0, 1, 100, true},
		{"exact fit, next page", 100, 100, 1, 0, 0, false},
		{"fewer messages than one page", 5, 100, 0, 1, 5, true},
		{"empty folder", 0, 100, 0, 0, 0, false},
		{"zero page size", 10, 0, 0, 0, 0, false},
		{"negative page index", 10, 5, -1, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lo, hi, ok := pageBounds(tc.total, tc.pageSize, tc.pageIndex)
			be.Equal(t, ok, tc.ok)
			be.Equal(t, lo, tc.lo)
			be.Equal(t, hi, tc.hi)
		})
	}
}

func TestEntryFromBuffer(t *testing.T) {
	date := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	buf := &imapclient.FetchMessageBuffer{
		SeqNum: 7,
		UID:    42,
		Envelope: &imap.Envelope{
			Date:      date,
			Subject:   "deploy finished",
			MessageID: "<m1@example.com>",
			From: []imap.Address{
				{Name: "Ann", Mailbox: "ann", Host: "ops.example.com"},
			},
		},
	}

	entry := entryFromBuffer(buf)
	be.Equal(t, entry.ID, "42")
	be.Equal(t, entry.MessageID, "<m1@example.com>")
	be.Equal(t, entry.FromAddress, "ann@ops.example.com")
	be.Equal(t, entry.Subject, "deploy finished")
	be.True(t, entry.Date.Equal(date))
}

func TestEntryFromBufferNilEnvelope(t *testing.T) {
	entry := entryFromBuffer(&imapclient.FetchMessageBuffer{UID: 42})
	be.Equal(t, entry.ID, "42")
	be.Equal(t, entry.MessageID, "")
	be.Equal(t, entry.FromAddress, "")
	be.True(t, entry.Date.IsZero())
}

func TestEntryFromBufferNoSender(t *testing.T) {
	entry := entryFromBuffer(&imapclient.FetchMessageBuffer{
		UID:      7,
		Envelope: &imap.Envelope{MessageID: "<m2@example.com>"},
	})
	be.Equal(t, entry.MessageID, "<m2@example.com>")
	be.Equal(t, entry.FromAddress, "")
}
