package report

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/nhle/mailstat/internal/stats"
)

func TestDayTable(t *testing.T) {
	out := DayTable([]stats.DayCount{
		{Day: "2024-03-05", Count: 3},
		{Day: "2024-03-06", Count: 1},
	})

	be.True(t, strings.Contains(out, "DATE"))
	be.True(t, strings.Contains(out, "COUNT"))
	be.True(t, strings.Contains(out, "2024-03-05"))
	be.True(t, strings.Contains(out, "2024-03-06"))
	be.True(t, strings.Contains(out, "3"))
}

func TestDomainTable(t *testing.T) {
	out := DomainTable([]stats.DomainCount{
		{Domain: "ops.example.com", Count: 5},
		{Domain: "example.com", Count: 2},
	})

	be.True(t, strings.Contains(out, "DOMAIN"))
	be.True(t, strings.Contains(out, "COUNT"))
	be.True(t, strings.Contains(out, "ops.example.com"))
	be.True(t, strings.Contains(out, "5"))
}
