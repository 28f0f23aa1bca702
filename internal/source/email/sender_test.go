package email

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-message/mail"
	"github.com/nalgeon/be"

	"github.com/nhle/mailstat/internal/source"
)

func TestWriteMessage(t *testing.T) {
	msg := source.OutgoingMessage{
		From:     "me@example.com",
		To:       []string{"a@example.com", "b@example.org"},
		Subject:  "mailstat report for me@example.com (last 14 days)",
		HTMLBody: "<h2>Emails by date</h2>",
		Attachment: &source.Attachment{
			Filename: "count-by-date.png",
			MIMEType: "image/png",
			Data:     []byte{0x89, 'P', 'N', 'G'},
		},
	}

	var buf bytes.Buffer
	be.Err(t, writeMessage(&buf, msg), nil)

	mr, err := mail.CreateReader(bytes.NewReader(buf.Bytes()))
	be.Err(t, err, nil)

	from, err := mr.Header.AddressList("From")
	be.Err(t, err, nil)
	be.Equal(t, len(from), 1)
	be.Equal(t, from[0].Address, "me@example.com")

	to, err := mr.Header.AddressList("To")
	be.Err(t, err, nil)
	be.Equal(t, len(to), 2)
	be.Equal(t, to[0].Address, "a@example.com")
	be.Equal(t, to[1].Address, "b@example.org")

	subject, err := mr.Header.Subject()
	be.Err(t, err, nil)
	be.Equal(t, subject, msg.Subject)

	msgID, err := mr.Header.MessageID()
	be.Err(t, err, nil)
	be.True(t, strings.HasSuffix(msgID, "@mailstat.local"))

	var sawHTML, sawAttachment bool
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		be.Err(t, err, nil)

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			ctype, _, err := h.ContentType()
			be.Err(t, err, nil)
			be.Equal(t, ctype, "text/html")

			body, err := io.ReadAll(part.Body)
			be.Err(t, err, nil)
			be.Equal(t, string(body), msg.HTMLBody)
			sawHTML = true
		case *mail.AttachmentHeader:
			filename, err := h.Filename()
			be.Err(t, err, nil)
			be.Equal(t, filename, "count-by-date.png")

			ctype, _, err := h.ContentType()
			be.Err(t, err, nil)
			be.Equal(t, ctype, "image/png")

			data, err := io.ReadAll(part.Body)
			be.Err(t, err, nil)
			be.Equal(t, data, []byte{0x89, 'P', 'N', 'G'})
			sawAttachment = true
		}
	}
	be.True(t, sawHTML)
	be.True(t, sawAttachment)
}

func TestWriteMessageWithoutAttachment(t *testing.T) {
	msg := source.OutgoingMessage{
		From:     "me@example.com",
		To:       []string{"a@example.com"},
		Subject:  "report",
		HTMLBody: "<p>empty window</p>",
	}

	var buf bytes.Buffer
	be.Err(t, writeMessage(&buf, msg), nil)

	mr, err := mail.CreateReader(bytes.NewReader(buf.Bytes()))
	be.Err(t, err, nil)

	attachments := 0
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		be.Err(t, err, nil)
		if _, ok := part.Header.(*mail.AttachmentHeader); ok {
			attachments++
		}
	}
	be.Equal(t, attachments, 0)
}

func TestSendRequiresRecipients(t *testing.T) {
	sender := NewSender(SMTPConfig{Host: "smtp.example.com", Port: "465"})

	err := sender.Send(context.Background(), source.OutgoingMessage{
		From:    "me@example.com",
		Subject: "report",
	})
	be.Err(t, err)
}
