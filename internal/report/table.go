package report

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/mailstat/internal/stats"
	"github.com/nhle/mailstat/internal/theme"
)

// newTable builds the shared two-column table frame.
func newTable(left, right string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return theme.TableHeaderStyle
			case col == 1:
				return theme.TableCountStyle
			default:
				return theme.TableCellStyle
			}
		}).
		Headers(left, right)
}

// DayTable renders the day aggregate as a boxed terminal table.
func DayTable(rows []stats.DayCount) string {
	t := newTable("DATE", "COUNT")
	for _, row := range rows {
		t.Row(row.Day, strconv.Itoa(row.Count))
	}
	return t.Render()
}

// DomainTable renders the domain aggregate as a boxed terminal table.
func DomainTable(rows []stats.DomainCount) string {
	t := newTable("DOMAIN", "COUNT")
	for _, row := range rows {
		t.Row(row.Domain, strconv.Itoa(row.Count))
	}
	return t.Render()
}
