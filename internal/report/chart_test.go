package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"github.com/nhle/mailstat/internal/stats"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderDayChart(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDayChart(&buf, []stats.DayCount{
		{Day: "2024-03-05", Count: 3},
		{Day: "2024-03-06", Count: 1},
		{Day: "2024-03-07", Count: 4},
	})
	be.Err(t, err, nil)
	be.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestRenderDayChartSingleDay(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDayChart(&buf, []stats.DayCount{
		{Day: "2024-03-05", Count: 2},
	})
	be.Err(t, err, nil)
	be.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestRenderDayChartFlatSeries(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDayChart(&buf, []stats.DayCount{
		{Day: "2024-03-05", Count: 2},
		{Day: "2024-03-06", Count: 2},
		{Day: "2024-03-07", Count: 2},
	})
	be.Err(t, err, nil)
	be.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestRenderDayChartNoData(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDayChart(&buf, nil)
	be.Err(t, err, ErrNoData)
	be.Equal(t, buf.Len(), 0)
}

func TestRenderDayChartBadDay(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDayChart(&buf, []stats.DayCount{
		{Day: "not-a-date", Count: 1},
	})
	be.Err(t, err)
}

func TestSaveDayChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "count-by-date.png")
	err := SaveDayChart(path, []stats.DayCount{
		{Day: "2024-03-05", Count: 3},
		{Day: "2024-03-06", Count: 1},
	})
	be.Err(t, err, nil)

	raw, err := os.ReadFile(path)
	be.Err(t, err, nil)
	be.True(t, bytes.HasPrefix(raw, pngSignature))
}

func TestSaveDayChartNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count-by-date.png")
	err := SaveDayChart(path, nil)
	be.Err(t, err, ErrNoData)

	_, statErr := os.Stat(path)
	be.True(t, os.IsNotExist(statErr))
}
