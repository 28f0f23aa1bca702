package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/nhle/mailstat/internal/source"
	"github.com/nhle/mailstat/internal/stats"
)

// EmailParams carries everything needed to compose the report message.
type EmailParams struct {
	// From is the sender address, normally the synced account.
	From string

	// To lists the recipients.
	To []string

	// Account names the mailbox the report covers.
	Account string

	// WindowDays is the lookback window the aggregates cover.
	WindowDays int

	// Days and Domains are the aggregate rows, already sorted.
	Days    []stats.DayCount
	Domains []stats.DomainCount

	// Skipped is the number of entries whose sender address did not
	// parse and were left out of the domain aggregate.
	Skipped int

	// ChartPNG is the rendered day chart; attached when non-empty.
	ChartPNG []byte
}

var reportTemplate = template.Must(template.New("report").Parse(`<html>
<body>
<h2>Emails by date</h2>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Date</th><th>Count</th></tr>
{{range .Days}}<tr><td>{{.Day}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
<h2>Emails by sender domain</h2>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Domain</th><th>Count</th></tr>
{{range .Domains}}<tr><td>{{.Domain}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
{{if .Skipped}}<p>{{.Skipped}} entries had unparseable sender addresses and are not counted by domain.</p>
{{end}}</body>
</html>
`))

// BuildEmail composes the report message: both aggregates as HTML
// tables in the body, the chart as a PNG attachment when present.
func BuildEmail(p EmailParams) (source.OutgoingMessage, error) {
	var body bytes.Buffer
	if err := reportTemplate.Execute(&body, p); err != nil {
		return source.OutgoingMessage{}, fmt.Errorf(
			"rendering report body: %w", err,
		)
	}

	msg := source.OutgoingMessage{
		From: p.From,
		To:   p.To,
		Subject: fmt.Sprintf(
			"mailstat report for %s (last %d days)",
			p.Account, p.WindowDays,
		),
		HTMLBody: body.String(),
	}

	if len(p.ChartPNG) > 0 {
		msg.Attachment = &source.Attachment{
			Filename: "count-by-date.png",
			MIMEType: "image/png",
			Data:     p.ChartPNG,
		}
	}

	return msg, nil
}
