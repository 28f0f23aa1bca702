// Package report formats aggregates as CSV tables, boxed terminal
// tables, a line chart, and an optional emailed report. No aggregation
// logic lives here; it is presentation over internal/stats output.
package report

import (
	"fmt"
	"io"

	"github.com/nhle/mailstat/internal/stats"
)

// WriteDayCSV writes the day aggregate as a date,count CSV table.
func WriteDayCSV(w io.Writer, rows []stats.DayCount) error {
	if _, err := fmt.Fprintln(w, "date,count"); err != nil {
		return fmt.Errorf("writing day header: %w", err)
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s,%d\n", row.Day, row.Count); err != nil {
			return fmt.Errorf("writing day row: %w", err)
		}
	}

	return nil
}

// WriteDomainCSV writes the domain aggregate as a domain,count CSV table.
func WriteDomainCSV(w io.Writer, rows []stats.DomainCount) error {
	if _, err := fmt.Fprintln(w, "domain,count"); err != nil {
		return fmt.Errorf("writing domain header: %w", err)
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s,%d\n", row.Domain, row.Count); err != nil {
			return fmt.Errorf("writing domain row: %w", err)
		}
	}

	return nil
}
