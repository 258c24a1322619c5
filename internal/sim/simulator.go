package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/diskbox/internal/dynamo"
	"github.com/san-kum/diskbox/internal/physics"
)

// Simulator is the frame driver. It owns the particles and the boundary for
// the whole run and is not safe for concurrent use.
type Simulator struct {
	box       *physics.Boundary
	particles []physics.Particle
	sink      Sink
	metrics   []Metric
	observers []Observer
	frame     Frame
	step      int
}

func New(box *physics.Boundary, particles []physics.Particle, sink Sink) *Simulator {
	if sink == nil {
		sink = Discard
	}
	return &Simulator{
		box:       box,
		particles: particles,
		sink:      sink,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		frame: Frame{
			Particles: make([]ParticleState, len(particles)),
		},
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Particles exposes the live particle slice for read-only inspection.
func (s *Simulator) Particles() []physics.Particle { return s.particles }
func (s *Simulator) Boundary() *physics.Boundary   { return s.box }
func (s *Simulator) StepCount() int                { return s.step }

// Step advances the gas by one frame:
//
//  1. export the pre-step frame and its kinetic energy
//  2. reset the pressure window
//  3. resolve every pair i < j once, in index order
//  4. rebound then advance every particle, in index order
//  5. finalize and export the window pressure
func (s *Simulator) Step(dt float64) (Summary, error) {
	t := float64(s.step) * dt

	energy := s.fillFrame(t)
	if err := s.sink.WriteFrame(&s.frame); err != nil {
		return Summary{}, &dynamo.SimError{Step: s.step, Time: t, Message: "write frame", Wrapped: fmt.Errorf("%w: %w", dynamo.ErrSink, err)}
	}

	s.box.ResetPressureWindow()

	collisions := 0
	n := len(s.particles)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if physics.Collide(&s.particles[i], &s.particles[j]) {
				collisions++
			}
		}
	}

	rebounds := 0
	for i := range s.particles {
		rebounds += s.particles[i].Rebound(s.box)
		s.particles[i].Advance(dt)
	}

	samples := s.box.Samples()
	summary := Summary{
		Step:       s.step,
		Time:       t,
		Pressure:   s.box.FinalizePressure(),
		Energy:     energy,
		Samples:    samples,
		Collisions: collisions,
		Rebounds:   rebounds,
	}

	if err := s.sink.WriteSummary(summary); err != nil {
		return summary, &dynamo.SimError{Step: s.step, Time: t, Message: "write summary", Wrapped: fmt.Errorf("%w: %w", dynamo.ErrSink, err)}
	}

	for _, m := range s.metrics {
		m.Observe(summary)
	}
	for _, obs := range s.observers {
		obs.OnStep(summary)
	}

	s.step++
	return summary, nil
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Metrics:       make(map[string]float64),
		InitialEnergy: physics.TotalKineticEnergy(s.particles),
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		summary, err := s.Step(cfg.Dt)
		if err != nil {
			return result, err
		}

		result.StepsTaken++
		result.FinalPressure = summary.Pressure
		result.Collisions += summary.Collisions
		result.Rebounds += summary.Rebounds

		if cfg.ValidateState {
			if idx := s.firstInvalid(); idx >= 0 {
				return result, &dynamo.SimError{Step: summary.Step, Time: summary.Time, Message: fmt.Sprintf("particle %d", idx), Wrapped: dynamo.ErrInvalidState}
			}
		}
	}

	result.FinalEnergy = physics.TotalKineticEnergy(s.particles)
	if result.InitialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy-result.InitialEnergy) / math.Abs(result.InitialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidConfig, cfg.Steps)
	}
	return nil
}

func (s *Simulator) fillFrame(t float64) float64 {
	energy := 0.0
	for i := range s.particles {
		p := &s.particles[i]
		s.frame.Particles[i] = ParticleState{X: p.X(), Y: p.Y(), Speed: p.Speed()}
		energy += p.KineticEnergy()
	}
	s.frame.Step = s.step
	s.frame.Time = t
	s.frame.Energy = energy
	return energy
}

func (s *Simulator) firstInvalid() int {
	for i := range s.particles {
		if !s.particles[i].IsFinite() {
			return i
		}
	}
	return -1
}
