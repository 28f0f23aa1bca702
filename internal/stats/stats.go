package stats

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/nhle/mailstat/internal/model"
)

// dayFormat is the bucket key layout; ISO dates sort chronologically
// as plain strings.
const dayFormat = "2006-01-02"

// AddressError records a from-address that did not parse during domain
// aggregation. The entry is skipped and counted separately rather than
// aborting the aggregate.
type AddressError struct {
	Address string
	Err     error
}

func (e AddressError) Error() string {
	return fmt.Sprintf("parsing address %q: %v", e.Address, e.Err)
}

func (e AddressError) Unwrap() error {
	return e.Err
}

// DayCount is one row of the day aggregate.
type DayCount struct {
	Day   string
	Count int
}

// DomainCount is one row of the domain aggregate.
type DomainCount struct {
	Domain string
	Count  int
}

// CountByDay buckets entries by the calendar day of their timestamp,
// read in the entry's own stored offset. Entries dated at or before
// erroneous are excluded; the snapshot should already exclude them,
// but the aggregate does not assume it.
func CountByDay(
	entries []model.Entry, erroneous time.Time,
) map[string]int {
	counts := make(map[string]int)

	for _, entry := range entries {
		if !entry.Date.After(erroneous) {
			continue
		}
		counts[entry.Date.Format(dayFormat)]++
	}

	return counts
}

// CountByDomain buckets entries by sender domain. Entries dated at or
// before erroneous are excluded. An entry whose from-address does not
// parse is skipped and reported in the returned failures, so the
// caller can log them and account for the difference between the
// aggregate total and the entry count.
func CountByDomain(
	entries []model.Entry, erroneous time.Time,
) (map[string]int, []AddressError) {
	counts := make(map[string]int)
	var failures []AddressError

	for _, entry := range entries {
		if !entry.Date.After(erroneous) {
			continue
		}

		domain, err := Domain(entry.FromAddress)
		if err != nil {
			failures = append(failures, AddressError{
				Address: entry.FromAddress,
				Err:     err,
			})
			continue
		}
		counts[domain]++
	}

	return counts, failures
}

// Domain extracts the domain portion of a mailbox address.
func Domain(address string) (string, error) {
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return "", err
	}

	at := strings.LastIndex(parsed.Address, "@")
	if at < 0 || at == len(parsed.Address)-1 {
		return "", fmt.Errorf("address %q has no domain", parsed.Address)
	}

	return parsed.Address[at+1:], nil
}

// SortedDays flattens the day aggregate in date-ascending order.
func SortedDays(counts map[string]int) []DayCount {
	rows := make([]DayCount, 0, len(counts))
	for day, count := range counts {
		rows = append(rows, DayCount{Day: day, Count: count})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Day < rows[j].Day
	})

	return rows
}

// SortedDomains flattens the domain aggregate ordered by count
// descending, then domain ascending.
func SortedDomains(counts map[string]int) []DomainCount {
	rows := make([]DomainCount, 0, len(counts))
	for domain, count := range counts {
		rows = append(rows, DomainCount{Domain: domain, Count: count})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Domain < rows[j].Domain
	})

	return rows
}

// WithinWindow returns the entries dated at or after cutoff, the
// "this run's window" view of a snapshot.
func WithinWindow(
	entries []model.Entry, cutoff time.Time,
) []model.Entry {
	window := make([]model.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Date.Before(cutoff) {
			continue
		}
		window = append(window, entry)
	}
	return window
}
