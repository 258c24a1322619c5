package physics

import (
	"fmt"
	"math"
	"math/rand"
)

// LatticeParams describes the initial gas: n disks of one mass and radius on a
// centered square lattice filling a box of the given side.
type LatticeParams struct {
	Side   float64
	N      int
	Radius float64
	Mass   float64
	VMax   float64
}

// GridSize is the number of lattice cells per side needed to hold n disks.
func GridSize(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Pitch is the side of one lattice cell.
func Pitch(side float64, n int) float64 {
	g := GridSize(n)
	if g == 0 {
		return 0
	}
	return side / float64(g)
}

// SuggestedRadius leaves a 10% gap between neighbouring disks at creation.
func SuggestedRadius(side float64, n int) float64 {
	return 0.9 * Pitch(side, n) / 2
}

// ValidateRadius checks 0 < r < pitch/2 so no two disks overlap at creation.
func ValidateRadius(side float64, n int, r float64) error {
	if !(r > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidRadius, r)
	}
	if limit := Pitch(side, n) / 2; r >= limit {
		return fmt.Errorf("%w: got %g, limit %g (suggested %g)", ErrRadiusTooLarge, r, limit, SuggestedRadius(side, n))
	}
	return nil
}

func (lp LatticeParams) Validate() error {
	if !(lp.Side > 0) {
		return fmt.Errorf("%w: side must be positive, got %g", ErrInvalidParams, lp.Side)
	}
	if lp.N <= 0 {
		return fmt.Errorf("%w: particle count must be positive, got %d", ErrInvalidParams, lp.N)
	}
	if !(lp.VMax >= 0) {
		return fmt.Errorf("%w: vmax must be non-negative, got %g", ErrInvalidParams, lp.VMax)
	}
	if !(lp.Mass > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidMass, lp.Mass)
	}
	return ValidateRadius(lp.Side, lp.N, lp.Radius)
}

// NewLattice places lp.N disks column by column on the lattice, each with a
// uniformly random heading and a speed uniform in [0, VMax].
func NewLattice(lp LatticeParams, rnd *rand.Rand) ([]Particle, error) {
	if err := lp.Validate(); err != nil {
		return nil, err
	}

	grid := GridSize(lp.N)
	pitch := Pitch(lp.Side, lp.N)
	half := lp.Side / 2

	particles := make([]Particle, 0, lp.N)
	for i := 0; i < grid && len(particles) < lp.N; i++ {
		for j := 0; j < grid && len(particles) < lp.N; j++ {
			x := -half + (float64(i)+0.5)*pitch
			y := -half + (float64(j)+0.5)*pitch

			ang := 2 * math.Pi * rnd.Float64()
			v := lp.VMax * rnd.Float64()

			p, err := NewParticle(lp.Mass, x, y, v*math.Cos(ang), v*math.Sin(ang), lp.Radius)
			if err != nil {
				return nil, err
			}
			particles = append(particles, p)
		}
	}
	return particles, nil
}

// TotalKineticEnergy sums 1/2 m v^2 over all particles.
func TotalKineticEnergy(ps []Particle) float64 {
	e := 0.0
	for i := range ps {
		e += ps[i].KineticEnergy()
	}
	return e
}
