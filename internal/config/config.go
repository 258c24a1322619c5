package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/diskbox/internal/dynamo"
	"github.com/san-kum/diskbox/internal/physics"
	"github.com/san-kum/diskbox/internal/sim"
	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSide      = 10.0
	DefaultParticles = 100
	DefaultVMax      = 1.0
	DefaultMass      = 1.0
	DefaultDt        = 0.01
	DefaultSteps     = 300
	DefaultSeed      = 1
	DefaultOutDir    = "runs"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	Box BoxConfig `yaml:"box"`
	Run RunConfig `yaml:"run"`
}

// BoxConfig describes the gas. A zero Radius selects the suggested radius
// for the lattice.
type BoxConfig struct {
	Side      float64 `yaml:"side" gcfg:"side"`
	Particles int     `yaml:"particles" gcfg:"particles"`
	Radius    float64 `yaml:"radius" gcfg:"radius"`
	Mass      float64 `yaml:"mass" gcfg:"mass"`
	VMax      float64 `yaml:"vmax" gcfg:"vmax"`
}

type RunConfig struct {
	Dt            float64 `yaml:"dt" gcfg:"dt"`
	Steps         int     `yaml:"steps" gcfg:"steps"`
	Seed          int64   `yaml:"seed" gcfg:"seed"`
	OutDir        string  `yaml:"out_dir" gcfg:"out-dir"`
	ValidateState bool    `yaml:"validate_state" gcfg:"validate-state"`
}

// iniFile maps the [box] and [run] sections of an INI config.
type iniFile struct {
	Box BoxConfig
	Run RunConfig
}

func DefaultConfig() *Config {
	return &Config{
		Box: BoxConfig{
			Side:      DefaultSide,
			Particles: DefaultParticles,
			Mass:      DefaultMass,
			VMax:      DefaultVMax,
		},
		Run: RunConfig{
			Dt:            DefaultDt,
			Steps:         DefaultSteps,
			Seed:          DefaultSeed,
			OutDir:        DefaultOutDir,
			ValidateState: true,
		},
	}
}

// Load reads a config file over the defaults. The format follows the
// extension: .yaml/.yml or .ini/.gcfg.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a config file over a copy of base, so keys missing from the
// file keep the base values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := base.Clone()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".ini", ".gcfg":
		ini := iniFile{Box: cfg.Box, Run: cfg.Run}
		if err := gcfg.ReadStringInto(&ini, string(data)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Box, cfg.Run = ini.Box, ini.Run
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolvedRadius is the configured radius, or the suggested one when unset.
func (c *Config) ResolvedRadius() float64 {
	if c.Box.Radius == 0 {
		return physics.SuggestedRadius(c.Box.Side, c.Box.Particles)
	}
	return c.Box.Radius
}

func (c *Config) LatticeParams() physics.LatticeParams {
	return physics.LatticeParams{
		Side:   c.Box.Side,
		N:      c.Box.Particles,
		Radius: c.ResolvedRadius(),
		Mass:   c.Box.Mass,
		VMax:   c.Box.VMax,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Run.Dt,
		Steps:         c.Run.Steps,
		ValidateState: c.Run.ValidateState,
	}
}

// Validate checks the setup before any file or particle is created.
func (c *Config) Validate() error {
	if err := c.LatticeParams().Validate(); err != nil {
		return err
	}
	if !(c.Run.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, c.Run.Dt)
	}
	if c.Run.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidConfig, c.Run.Steps)
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
