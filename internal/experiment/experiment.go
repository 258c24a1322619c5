package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/diskbox/internal/config"
	"github.com/san-kum/diskbox/internal/physics"
	"github.com/san-kum/diskbox/internal/sim"
)

// Experiment turns a config into a ready simulator: box, seeded lattice,
// sink and metrics.
type Experiment struct {
	cfg        *config.Config
	simulator  *sim.Simulator
	randSource *rand.Rand
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Run.Seed)),
	}
}

// Setup validates the config and places the particles. A nil sink discards
// frames.
func (e *Experiment) Setup(sink sim.Sink, metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	box, err := physics.NewSquareBoundary(e.cfg.Box.Side)
	if err != nil {
		return err
	}
	particles, err := physics.NewLattice(e.cfg.LatticeParams(), e.randSource)
	if err != nil {
		return err
	}

	e.simulator = sim.New(box, particles, sink)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// Simulator returns the underlying simulator for adding observers or
// stepping it by hand.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
