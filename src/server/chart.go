package server

import (
	"bytes"
	"time"

	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	chartWidth  = 960
	chartHeight = 360
)

// -----------------------------------------------------------------------------

// renderChartPNG draws the snapshot as a line chart with HH:MM ticks in loc.
func renderChartPNG(instrument string, points []models.MSamplePoint, loc *time.Location) ([]byte, error) {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.TimestampUTC
		ys[i] = p.Value
	}

	// Pad to at least two X values for go-chart
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(time.Second))
		ys = append(ys, ys[0])
	}

	ch := chart.Chart{
		Title:      instrument,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				switch t := v.(type) {
				case time.Time:
					return utils.LocalLabel(t, loc)
				case float64:
					return utils.LocalLabel(time.Unix(0, int64(t)), loc)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{Name: "rate"},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    instrument,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
