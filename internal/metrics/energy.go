package metrics

import (
	"math"

	"github.com/san-kum/diskbox/internal/sim"
)

// KineticEnergy reports the total kinetic energy of the last observed frame.
type KineticEnergy struct {
	name    string
	last    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s sim.Summary) {
	e.last = s.Energy
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.last
}

func (e *KineticEnergy) Reset() {
	e.last = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation of the total kinetic
// energy from the first observed frame. Elastic collisions and rebounds keep
// it at rounding level.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Summary) {
	if e.samples == 0 {
		e.initialEnergy = s.Energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(s.Energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
