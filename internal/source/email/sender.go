package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"

	"github.com/nhle/mailstat/internal/source"
)

// Sender delivers composed report messages over SMTP. It implements
// source.MailSender.
type Sender struct {
	config SMTPConfig
}

// NewSender creates a Sender with the given SMTP settings.
func NewSender(config SMTPConfig) *Sender {
	return &Sender{config: config}
}

// Send renders the message as MIME and delivers it to every recipient.
func (s *Sender) Send(
	_ context.Context, msg source.OutgoingMessage,
) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients for %q", msg.Subject)
	}

	var buf bytes.Buffer
	if err := writeMessage(&buf, msg); err != nil {
		return fmt.Errorf("composing message: %w", err)
	}

	if err := s.transmit(msg.From, msg.To, buf.Bytes()); err != nil {
		return &source.TransportError{
			Op:  "send report",
			Err: err,
		}
	}

	return nil
}

// writeMessage renders the message: an HTML inline part plus the
// optional binary attachment.
func writeMessage(w io.Writer, msg source.OutgoingMessage) error {
	to := make([]*mail.Address, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, &mail.Address{Address: addr})
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: msg.From}})
	h.SetAddressList("To", to)
	h.SetSubject(msg.Subject)
	h.SetMessageID(uuid.NewString() + "@mailstat.local")

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("creating inline part: %w", err)
	}

	var ih mail.InlineHeader
	ih.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	pw, err := iw.CreatePart(ih)
	if err != nil {
		return fmt.Errorf("creating html part: %w", err)
	}
	if _, err := io.WriteString(pw, msg.HTMLBody); err != nil {
		return fmt.Errorf("writing html body: %w", err)
	}
	_ = pw.Close()
	_ = iw.Close()

	if att := msg.Attachment; att != nil {
		var ah mail.AttachmentHeader
		ah.SetContentType(att.MIMEType, nil)
		ah.SetFilename(att.Filename)

		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return fmt.Errorf("creating attachment: %w", err)
		}
		if _, err := aw.Write(att.Data); err != nil {
			return fmt.Errorf("writing attachment: %w", err)
		}
		_ = aw.Close()
	}

	return mw.Close()
}

// transmit opens the SMTP session and sends the raw message bytes.
func (s *Sender) transmit(from string, to []string, raw []byte) error {
	addr := s.config.Host + ":" + s.config.Port
	tlsConfig := &tls.Config{ServerName: s.config.Host}

	var client *smtp.Client
	var err error

	if s.config.TLS {
		client, err = smtp.DialTLS(addr, tlsConfig)
	} else {
		client, err = smtp.DialStartTLS(addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("connecting to SMTP %s: %w", addr, err)
	}
	defer client.Close()

	auth := sasl.NewPlainClient("", s.config.Username, s.config.Password)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	if err := client.Mail(from, nil); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt, nil); err != nil {
			return fmt.Errorf("SMTP RCPT TO %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}
	if _, err := writer.Write(raw); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing message body: %w", err)
	}

	return client.Quit()
}
