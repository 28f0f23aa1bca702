package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/nhle/mailstat/internal/stats"
)

// ErrNoData reports an empty aggregate; there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

const (
	chartTitle  = "Emails by date"
	chartWidth  = 1024
	chartHeight = 768
)

// RenderDayChart rasterizes the day counts as a PNG line chart, day on
// the x-axis and count on the y-axis.
func RenderDayChart(w io.Writer, rows []stats.DayCount) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	xs := make([]time.Time, 0, len(rows)+1)
	ys := make([]float64, 0, len(rows)+1)

	for _, row := range rows {
		day, err := time.Parse("2006-01-02", row.Day)
		if err != nil {
			return fmt.Errorf("parsing day %q: %w", row.Day, err)
		}
		xs = append(xs, day)
		ys = append(ys, float64(row.Count))
	}

	// A single bucket cannot form a line; pad it one day out.
	if len(xs) == 1 {
		xs = append(xs, xs[0].AddDate(0, 0, 1))
		ys = append(ys, ys[0])
	}

	// Anchor the y-axis at zero; a flat series would otherwise leave
	// the axis with no range to scale against.
	maxCount := 0.0
	for _, y := range ys {
		if y > maxCount {
			maxCount = y
		}
	}

	graph := chart.Chart{
		Title:  chartTitle,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: maxCount + 1,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "messages",
				Style: chart.Style{
					StrokeColor: drawing.ColorRed,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	return nil
}

// SaveDayChart renders the chart into path, creating parent
// directories and overwriting any previous chart. The render happens
// in memory first so a failure cannot truncate the previous artifact.
func SaveDayChart(path string, rows []stats.DayCount) error {
	var buf bytes.Buffer
	if err := RenderDayChart(&buf, rows); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating chart directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing chart %s: %w", path, err)
	}

	return nil
}
