// Package chart renders the before/after comparison image sent along with
// processed audio.
package chart

import (
	"bytes"
	"fmt"

	"github.com/m3rciful/audiobot/internal/audio"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	beforeColor = drawing.ColorFromHex("ef4444")
	afterColor  = drawing.ColorFromHex("10b981")
)

// Comparison renders a PNG bar chart comparing metrics before and after
// processing: quality score, RMS (scaled x100) and dynamic range in dB,
// on a shared 0..100 axis.
func Comparison(before, after audio.Metrics) ([]byte, error) {
	bars := []chart.Value{
		{Label: "Quality", Value: before.Quality, Style: barStyle(beforeColor)},
		{Label: "Quality'", Value: after.Quality, Style: barStyle(afterColor)},
		{Label: "RMS", Value: before.RMS * 100, Style: barStyle(beforeColor)},
		{Label: "RMS'", Value: after.RMS * 100, Style: barStyle(afterColor)},
		{Label: "DynRange", Value: before.DynamicRangeDB, Style: barStyle(beforeColor)},
		{Label: "DynRange'", Value: after.DynamicRangeDB, Style: barStyle(afterColor)},
	}

	graph := chart.BarChart{
		Title:      "Before / After",
		Height:     400,
		Width:      800,
		BarWidth:   60,
		BarSpacing: 20,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart: render: %w", err)
	}
	return buf.Bytes(), nil
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   c,
		StrokeColor: c,
		StrokeWidth: 0,
	}
}
