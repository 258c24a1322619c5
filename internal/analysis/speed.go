package analysis

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoData = errors.New("no finite speeds")

// minSpan widens a degenerate range so every bin has a positive width.
const minSpan = 1e-9

type Histogram struct {
	Edges   []float64 // len(Counts)+1, ascending
	Counts  []float64
	Density []float64 // counts normalized to unit area
}

// Centers returns the midpoint of each bin.
func (h *Histogram) Centers() []float64 {
	c := make([]float64, len(h.Counts))
	for i := range c {
		c[i] = 0.5 * (h.Edges[i] + h.Edges[i+1])
	}
	return c
}

func (h *Histogram) Total() float64 {
	return floats.Sum(h.Counts)
}

// FiniteSpeeds keeps the strictly positive finite entries, matching what the
// speeds file retains.
func FiniteSpeeds(speeds []float64) []float64 {
	out := make([]float64, 0, len(speeds))
	for _, v := range speeds {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SpeedHistogram bins the finite speeds into equal-width bins spanning
// [min, max]. The input slice is not modified.
func SpeedHistogram(speeds []float64, bins int) (*Histogram, error) {
	if bins < 1 {
		bins = 1
	}
	x := FiniteSpeeds(speeds)
	if len(x) == 0 {
		return nil, ErrNoData
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if hi-lo < minSpan {
		hi = lo + minSpan
	}
	// The top divider is exclusive in stat.Histogram.
	hi = math.Nextafter(hi, math.Inf(1))

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	edges[0], edges[bins] = lo, hi

	counts := stat.Histogram(nil, edges, x, nil)

	density := make([]float64, bins)
	n := float64(len(x))
	for i, c := range counts {
		density[i] = c / (n * (edges[i+1] - edges[i]))
	}

	return &Histogram{Edges: edges, Counts: counts, Density: density}, nil
}

// MeanSquare is <v^2> over the finite speeds.
func MeanSquare(speeds []float64) float64 {
	x := FiniteSpeeds(speeds)
	if len(x) == 0 {
		return 0
	}
	sq := make([]float64, len(x))
	floats.MulTo(sq, x, x)
	return stat.Mean(sq, nil)
}

// MaxwellBoltzmann2D is the equilibrium speed density of a 2D ideal gas,
// f(v) = (2v/<v^2>) exp(-v^2/<v^2>).
func MaxwellBoltzmann2D(v, meanSq float64) float64 {
	if meanSq <= 0 || v < 0 {
		return 0
	}
	return 2 * v / meanSq * math.Exp(-v*v/meanSq)
}

// Temperature2D returns kT for n disks with total kinetic energy e. With two
// translational degrees of freedom, E = N kT.
func Temperature2D(e float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return e / float64(n)
}
