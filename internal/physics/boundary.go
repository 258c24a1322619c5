package physics

import "fmt"

// pressureNorm divides every wall impulse sample. It is a fixed constant of
// the model (isotropic normalization), not derived per call.
const pressureNorm = 3.0

// Boundary is the rigid rectangular box plus the pressure accumulator for the
// current sampling window. The extent is fixed after construction.
type Boundary struct {
	xmin, xmax float64
	ymin, ymax float64

	pn float64 // running sum of impulse samples for the window
	n  int     // samples recorded in the window
	p  float64 // last finalized mean pressure
}

func NewBoundary(xmin, xmax, ymin, ymax float64) (*Boundary, error) {
	if !(xmin < xmax) || !(ymin < ymax) {
		return nil, fmt.Errorf("%w: x [%g, %g], y [%g, %g]", ErrInvalidExtent, xmin, xmax, ymin, ymax)
	}
	return &Boundary{xmin: xmin, xmax: xmax, ymin: ymin, ymax: ymax}, nil
}

// NewSquareBoundary returns a box of the given side centered on the origin.
func NewSquareBoundary(side float64) (*Boundary, error) {
	half := side / 2
	return NewBoundary(-half, half, -half, half)
}

func (b *Boundary) XMin() float64 { return b.xmin }
func (b *Boundary) XMax() float64 { return b.xmax }
func (b *Boundary) YMin() float64 { return b.ymin }
func (b *Boundary) YMax() float64 { return b.ymax }

func (b *Boundary) Width() float64  { return b.xmax - b.xmin }
func (b *Boundary) Height() float64 { return b.ymax - b.ymin }
func (b *Boundary) Area() float64   { return b.Width() * b.Height() }

// Contains reports whether (x, y) lies inside the closed extent.
func (b *Boundary) Contains(x, y float64) bool {
	return x >= b.xmin && x <= b.xmax && y >= b.ymin && y <= b.ymax
}

// ResetPressureWindow starts a new sampling window. The last finalized
// pressure is kept so an empty window can carry it forward.
func (b *Boundary) ResetPressureWindow() {
	b.pn = 0
	b.n = 0
}

// RecordImpulse adds one wall contact sample, value being m*|v|^2 at contact.
func (b *Boundary) RecordImpulse(value float64) {
	b.pn += value / pressureNorm
	b.n++
}

// FinalizePressure averages the window. A window without samples leaves the
// previous value in place.
func (b *Boundary) FinalizePressure() float64 {
	if b.n == 0 {
		return b.p
	}
	b.p = b.pn / float64(b.n)
	return b.p
}

func (b *Boundary) MeanPressure() float64 { return b.p }

// Samples returns the number of impulses recorded since the last reset.
func (b *Boundary) Samples() int { return b.n }
