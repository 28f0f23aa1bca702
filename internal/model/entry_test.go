package model

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestEntryKey(t *testing.T) {
	entry := Entry{ID: "42", MessageID: "<m1@example.com>"}
	be.Equal(t, entry.Key(), "<m1@example.com>")
}

func TestEntrySame(t *testing.T) {
	a := Entry{ID: "1", MessageID: "<m1@example.com>", Subject: "original"}
	b := Entry{ID: "2", MessageID: "<m1@example.com>", Subject: "re-delivered"}
	c := Entry{ID: "1", MessageID: "<m2@example.com>", Subject: "original"}

	// Identity is the message-id alone; differing metadata does not
	// make two deliveries different messages.
	be.True(t, a.Same(b))
	be.True(t, !a.Same(c))
}
