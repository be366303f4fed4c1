// Package config loads flight descriptions from YAML and turns them into
// envelopes, bodies and runner settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/balloon"
	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/forces"
	"github.com/san-kum/buoy/internal/gas"
	"github.com/san-kum/buoy/internal/geometry"
	"github.com/san-kum/buoy/internal/integrators"
	"github.com/san-kum/buoy/internal/log"
	"github.com/san-kum/buoy/internal/units"
)

const (
	DefaultIntegrator = "rk4"
	DefaultPolicy     = "skip"
	DefaultDrag       = 0.47
	DefaultSpacing    = 10.0
)

var ErrValidation = errors.New("config: validation failed")

// ValidationError names the offending field by its YAML path.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type Config struct {
	Name        string  `yaml:"name,omitempty"`
	Integrator  string  `yaml:"integrator"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	Workers     int     `yaml:"workers"`
	SampleEvery int     `yaml:"sample_every"`
	Policy      string  `yaml:"policy"`
	GroundLevel float64 `yaml:"ground_level"`

	Balloons []BalloonConfig `yaml:"balloons"`
	Gases    []GasConfig     `yaml:"gases,omitempty"`
}

// BalloonConfig describes one envelope. Count replicates it, spaced along
// the X axis.
type BalloonConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count,omitempty"`
	LiftGas string `yaml:"lift_gas"`

	MaxVolume       float64 `yaml:"max_volume"`
	EnvelopeMass    float64 `yaml:"envelope_mass"`
	PayloadMass     float64 `yaml:"payload_mass"`
	GasMass         float64 `yaml:"gas_mass,omitempty"`
	FillVolume      float64 `yaml:"fill_volume,omitempty"`
	FillTemperature float64 `yaml:"fill_temperature,omitempty"`
	FillPressure    float64 `yaml:"fill_pressure,omitempty"`
	BurstAltitude   float64 `yaml:"burst_altitude"`

	LaunchAltitude float64 `yaml:"launch_altitude"`
	Spacing        float64 `yaml:"spacing,omitempty"`

	Shape ShapeConfig       `yaml:"shape,omitempty"`
	Drag  *forces.DragModel `yaml:"drag,omitempty"`
}

// ShapeConfig selects the drag collider. An empty kind follows the
// envelope's own radius.
type ShapeConfig struct {
	Kind        string     `yaml:"kind,omitempty"`
	Radius      float64    `yaml:"radius,omitempty"`
	Height      float64    `yaml:"height,omitempty"`
	HalfExtents [3]float64 `yaml:"half_extents,omitempty"`
}

// GasConfig registers an extra lift gas alongside the built-ins.
type GasConfig struct {
	Name         string  `yaml:"name"`
	Abbreviation string  `yaml:"abbreviation,omitempty"`
	MolarMass    float64 `yaml:"molar_mass"`
	Gamma        float64 `yaml:"gamma,omitempty"`
}

func DefaultBalloon() BalloonConfig {
	b := balloon.DefaultConfig()
	return BalloonConfig{
		Name:          "balloon",
		LiftGas:       b.LiftGas.Name,
		MaxVolume:     b.MaxVolume.CubicMeters(),
		EnvelopeMass:  b.EnvelopeMass.Kilograms(),
		PayloadMass:   b.PayloadMass.Kilograms(),
		FillVolume:    b.FillVolume.CubicMeters(),
		BurstAltitude: b.BurstAltitude.Meters(),
	}
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		Dt:         flight.DefaultDt,
		Duration:   flight.DefaultDuration,
		Workers:    flight.DefaultWorkers,
		Policy:     DefaultPolicy,
		Balloons:   []BalloonConfig{DefaultBalloon()},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return &ValidationError{Field: "dt", Reason: "must be positive"}
	}
	if c.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be positive"}
	}
	if c.Workers < 0 {
		return &ValidationError{Field: "workers", Reason: "must not be negative"}
	}
	if c.SampleEvery < 0 {
		return &ValidationError{Field: "sample_every", Reason: "must not be negative"}
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return &ValidationError{Field: "integrator", Reason: err.Error()}
	}
	if _, err := flight.ParsePolicy(c.Policy); err != nil {
		return &ValidationError{Field: "policy", Reason: err.Error()}
	}
	if len(c.Balloons) == 0 {
		return &ValidationError{Field: "balloons", Reason: "at least one balloon is required"}
	}

	reg, err := c.Registry()
	if err != nil {
		return err
	}
	for i, b := range c.Balloons {
		if _, err := b.Envelope(reg); err != nil {
			return &ValidationError{Field: fmt.Sprintf("balloons[%d]", i), Reason: err.Error()}
		}
		if _, err := b.Shape.Build(); err != nil {
			return &ValidationError{Field: fmt.Sprintf("balloons[%d].shape", i), Reason: err.Error()}
		}
		if b.Count < 0 {
			return &ValidationError{Field: fmt.Sprintf("balloons[%d].count", i), Reason: "must not be negative"}
		}
	}
	return nil
}

// Registry returns the built-in species plus the configured extras.
func (c *Config) Registry() (*gas.Registry, error) {
	reg := gas.NewRegistry()
	for i, g := range c.Gases {
		s := gas.Species{
			Name:              g.Name,
			Abbreviation:      g.Abbreviation,
			MolarMass:         units.KilogramsPerMole(g.MolarMass),
			SpecificHeatRatio: g.Gamma,
		}
		if err := reg.Register(s); err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("gases[%d]", i), Reason: err.Error()}
		}
	}
	return reg, nil
}

func (c *Config) Flight() (flight.Config, error) {
	policy, err := flight.ParsePolicy(c.Policy)
	if err != nil {
		return flight.Config{}, err
	}
	return flight.Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		Workers:     c.Workers,
		MaxBodies:   flight.DefaultMaxBodies,
		SampleEvery: c.SampleEvery,
		Policy:      policy,
		GroundLevel: c.GroundLevel,
	}, nil
}

// Runner returns a runner over the standard atmosphere using the
// configured integrator.
func (c *Config) Runner(lg *log.Logger) (*flight.Runner, error) {
	newInteg, err := integrators.New(c.Integrator)
	if err != nil {
		return nil, err
	}
	// the runner logs body faults itself, so the atmosphere stays quiet
	return flight.NewRunner(atmosphere.StandardAtmosphere1976{}, newInteg, lg), nil
}

// Bodies builds every configured balloon, numbering bodies in order.
func (c *Config) Bodies() ([]*flight.Body, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}

	var bodies []*flight.Body
	for _, b := range c.Balloons {
		shape, err := b.Shape.Build()
		if err != nil {
			return nil, err
		}
		spacing := b.Spacing
		if spacing == 0 {
			spacing = DefaultSpacing
		}
		count := b.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			env, err := b.Envelope(reg)
			if err != nil {
				return nil, err
			}
			name := b.Name
			if count > 1 {
				name = fmt.Sprintf("%s-%d", b.Name, i+1)
			}
			pos := r3.Vector{X: float64(i) * spacing, Y: b.LaunchAltitude}
			body := flight.NewBody(len(bodies), name, env, pos)
			body.Shape = shape
			if b.Drag != nil {
				body.Drag = *b.Drag
			}
			bodies = append(bodies, body)
		}
	}
	return bodies, nil
}

func (b BalloonConfig) Envelope(reg *gas.Registry) (*balloon.Envelope, error) {
	species, err := reg.Lookup(b.LiftGas)
	if err != nil {
		return nil, err
	}
	return balloon.New(balloon.Config{
		MaxVolume:       units.CubicMeters(b.MaxVolume),
		EnvelopeMass:    units.Kilograms(b.EnvelopeMass),
		PayloadMass:     units.Kilograms(b.PayloadMass),
		LiftGas:         species,
		GasMass:         units.Kilograms(b.GasMass),
		FillVolume:      units.CubicMeters(b.FillVolume),
		FillTemperature: units.Kelvin(b.FillTemperature),
		FillPressure:    units.Pascals(b.FillPressure),
		BurstAltitude:   units.Meters(b.BurstAltitude),
	})
}

// Build returns the collider, or nil for the envelope's own sphere.
func (s ShapeConfig) Build() (geometry.Shape, error) {
	var shape geometry.Shape
	switch s.Kind {
	case "":
		return nil, nil
	case "sphere":
		shape = geometry.Sphere{Radius: units.Meters(s.Radius)}
	case "cuboid":
		h := s.HalfExtents
		shape = geometry.Cuboid{HalfExtents: r3.Vector{X: h[0], Y: h[1], Z: h[2]}}
	case "cylinder":
		shape = geometry.Cylinder{Radius: units.Meters(s.Radius), Height: units.Meters(s.Height)}
	case "capsule":
		shape = geometry.Capsule{Radius: units.Meters(s.Radius), HalfHeight: units.Meters(s.Height / 2)}
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	if err := geometry.Validate(shape); err != nil {
		return nil, err
	}
	return shape, nil
}
