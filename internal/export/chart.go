package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrTooFewPoints = errors.New("need at least two samples to chart")

// PressureChart renders the pressure log on the left axis and the kinetic
// energy on the right axis as a PNG.
func PressureChart(w io.Writer, times, pressure, energy []float64) error {
	if len(times) < 2 || len(pressure) < len(times) {
		return ErrTooFewPoints
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Pressure",
			XValues: times,
			YValues: pressure[:len(times)],
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
		},
	}

	graph := chart.Chart{
		Width:  960,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  "t",
			Style: chart.Style{FontSize: 10.0},
			Range: paddedRange(times, 0),
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.2f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "pressure",
			Style: chart.Style{FontSize: 10.0},
			Range: paddedRange(pressure[:len(times)], 0.05),
		},
	}

	if len(energy) >= len(times) {
		series = append(series, chart.ContinuousSeries{
			Name:    "Kinetic energy",
			YAxis:   chart.YAxisSecondary,
			XValues: times,
			YValues: energy[:len(times)],
			Style:   chart.Style{StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255}, StrokeWidth: 2.0},
		})
		graph.YAxisSecondary = chart.YAxis{
			Name:  "energy",
			Style: chart.Style{FontSize: 10.0},
			Range: paddedRange(energy[:len(times)], 0.05),
		}
	}

	graph.Series = series
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// paddedRange spans vals with a fractional margin. Flat data, such as the
// conserved energy, gets a unit-scale margin so the range is never empty.
func paddedRange(vals []float64, margin float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}

	span := hi - lo
	if span <= 1e-12*math.Max(1, math.Abs(hi)) {
		pad := math.Max(math.Abs(hi)*0.1, 1)
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	return &chart.ContinuousRange{Min: lo - span*margin, Max: hi + span*margin}
}
