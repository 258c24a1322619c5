package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/san-kum/diskbox/internal/analysis"
	"github.com/san-kum/diskbox/internal/config"
	"github.com/san-kum/diskbox/internal/experiment"
	"github.com/san-kum/diskbox/internal/metrics"
	"github.com/san-kum/diskbox/internal/sim"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	ParamVMax      = "vmax"
	ParamRadius    = "radius"
	ParamParticles = "particles"
)

var ErrUnknownParam = errors.New("unknown sweep parameter")

// Sweep varies one box parameter over [Min, Max] in Points evenly spaced
// values, holding the rest of Base fixed.
type Sweep struct {
	Param  string         `yaml:"param"`
	Min    float64        `yaml:"min"`
	Max    float64        `yaml:"max"`
	Points int            `yaml:"points"`
	Base   *config.Config `yaml:"base"`
}

type SweepResult struct {
	Value        float64 `json:"value"`
	MeanPressure float64 `json:"mean_pressure"`
	Energy       float64 `json:"energy"`
	Temperature  float64 `json:"temperature"`
	EnergyDrift  float64 `json:"energy_drift"`
}

// LoadSweep reads a sweep from YAML. A missing base uses the defaults.
func LoadSweep(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sweep := Sweep{Base: config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return nil, err
	}
	return &sweep, nil
}

// Values lists the parameter value of every point. A single point sits at
// Min.
func (s *Sweep) Values() []float64 {
	if s.Points <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Points-1)
	vals := make([]float64, s.Points)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

// Point returns the config for one sweep value.
func (s *Sweep) Point(value float64) (*config.Config, error) {
	base := s.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	cfg := base.Clone()

	switch s.Param {
	case ParamVMax:
		cfg.Box.VMax = value
	case ParamRadius:
		cfg.Box.Radius = value
	case ParamParticles:
		cfg.Box.Particles = int(value + 0.5)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, s.Param)
	}
	return cfg, cfg.Validate()
}

// RunSweep runs every point concurrently with frames discarded. Results keep
// the order of Values.
func RunSweep(ctx context.Context, sweep *Sweep) ([]SweepResult, error) {
	values := sweep.Values()
	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		cfg, err := sweep.Point(v)
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", sweep.Param, v, err)
		}
		cfgs[i] = cfg
	}

	results := make([]SweepResult, len(values))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range cfgs {
		i := i
		g.Go(func() error {
			pressure := metrics.NewMeanPressure()

			exp := experiment.New(cfgs[i])
			if err := exp.Setup(sim.Discard, []sim.Metric{pressure}); err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("sweep %s=%g: %w", sweep.Param, values[i], err)
			}

			results[i] = SweepResult{
				Value:        values[i],
				MeanPressure: pressure.Value(),
				Energy:       res.FinalEnergy,
				Temperature:  analysis.Temperature2D(res.FinalEnergy, cfgs[i].Box.Particles),
				EnergyDrift:  res.EnergyDrift,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
