package report

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"

	"github.com/nhle/mailstat/internal/stats"
)

func TestWriteDayCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDayCSV(&buf, []stats.DayCount{
		{Day: "2024-03-05", Count: 3},
		{Day: "2024-03-06", Count: 1},
	})
	be.Err(t, err, nil)
	be.Equal(t, buf.String(), "date,count\n2024-03-05,3\n2024-03-06,1\n")
}

func TestWriteDayCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	be.Err(t, WriteDayCSV(&buf, nil), nil)
	be.Equal(t, buf.String(), "date,count\n")
}

func TestWriteDomainCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDomainCSV(&buf, []stats.DomainCount{
		{Domain: "ops.example.com", Count: 5},
		{Domain: "example.com", Count: 2},
	})
	be.Err(t, err, nil)
	be.Equal(t, buf.String(), "domain,count\nops.example.com,5\nexample.com,2\n")
}
