package physics

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGridSizeAndPitch(t *testing.T) {
	tests := []struct {
		n     int
		grid  int
		pitch float64
	}{
		{1, 1, 10},
		{4, 2, 5},
		{5, 3, 10.0 / 3},
		{100, 10, 1},
	}

	for _, tt := range tests {
		if got := GridSize(tt.n); got != tt.grid {
			t.Errorf("GridSize(%d) = %d, want %d", tt.n, got, tt.grid)
		}
		if got := Pitch(10, tt.n); got != tt.pitch {
			t.Errorf("Pitch(10, %d) = %g, want %g", tt.n, got, tt.pitch)
		}
	}
}

func TestValidateRadius(t *testing.T) {
	tests := []struct {
		name string
		r    float64
		want error
	}{
		{"zero", 0, ErrInvalidRadius},
		{"negative", -0.1, ErrInvalidRadius},
		{"at limit", 2.5, ErrRadiusTooLarge},
		{"above limit", 3, ErrRadiusTooLarge},
		{"suggested", SuggestedRadius(10, 4), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRadius(10, 4, tt.r)
			if tt.want == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewLattice_Placement(t *testing.T) {
	lp := LatticeParams{Side: 10, N: 4, Radius: 0.5, Mass: 1, VMax: 1}
	ps, err := NewLattice(lp, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewLattice: %v", err)
	}

	want := [][2]float64{{-2.5, -2.5}, {-2.5, 2.5}, {2.5, -2.5}, {2.5, 2.5}}
	if len(ps) != len(want) {
		t.Fatalf("expected %d particles, got %d", len(want), len(ps))
	}
	for i, w := range want {
		if ps[i].X() != w[0] || ps[i].Y() != w[1] {
			t.Errorf("particle %d at (%g, %g), want (%g, %g)", i, ps[i].X(), ps[i].Y(), w[0], w[1])
		}
		if s := ps[i].Speed(); s > lp.VMax+1e-12 {
			t.Errorf("particle %d speed %g exceeds vmax", i, s)
		}
		if ps[i].Radius() != lp.Radius || ps[i].Mass() != lp.Mass {
			t.Errorf("particle %d has wrong radius or mass", i)
		}
	}
}

func TestNewLattice_PartialGrid(t *testing.T) {
	lp := LatticeParams{Side: 9, N: 5, Radius: 1, Mass: 1, VMax: 2}
	ps, err := NewLattice(lp, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewLattice: %v", err)
	}
	if len(ps) != 5 {
		t.Fatalf("expected 5 particles, got %d", len(ps))
	}
	// Column 0 is filled before column 1 starts.
	if ps[3].X() != 0 || ps[3].Y() != -3 {
		t.Errorf("particle 3 at (%g, %g), want (0, -3)", ps[3].X(), ps[3].Y())
	}
}

func TestNewLattice_Deterministic(t *testing.T) {
	lp := LatticeParams{Side: 20, N: 50, Radius: 0.5, Mass: 1, VMax: 3}

	a, _ := NewLattice(lp, rand.New(rand.NewSource(42)))
	b, _ := NewLattice(lp, rand.New(rand.NewSource(42)))

	for i := range a {
		if a[i].Vel() != b[i].Vel() || a[i].Pos() != b[i].Pos() {
			t.Fatalf("particle %d differs between runs with the same seed", i)
		}
	}
}

func TestNewLattice_Invalid(t *testing.T) {
	tests := []struct {
		name string
		lp   LatticeParams
		want error
	}{
		{"no particles", LatticeParams{Side: 10, N: 0, Radius: 0.5, Mass: 1}, ErrInvalidParams},
		{"bad side", LatticeParams{Side: -1, N: 4, Radius: 0.5, Mass: 1}, ErrInvalidParams},
		{"negative vmax", LatticeParams{Side: 10, N: 4, Radius: 0.5, Mass: 1, VMax: -1}, ErrInvalidParams},
		{"zero mass", LatticeParams{Side: 10, N: 4, Radius: 0.5}, ErrInvalidMass},
		{"radius too large", LatticeParams{Side: 10, N: 4, Radius: 2.5, Mass: 1}, ErrRadiusTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLattice(tt.lp, rand.New(rand.NewSource(1)))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTotalKineticEnergy(t *testing.T) {
	a := mustParticle(t, 2, 0, 0, 1, 0, 0.1)
	b := mustParticle(t, 1, 1, 1, 0, 2, 0.1)
	if e := TotalKineticEnergy([]Particle{a, b}); e != 3 {
		t.Errorf("expected 3, got %g", e)
	}
}
