// Package balloon tracks the state of a lighter-than-air envelope and
// evaluates one simulation tick for it.
package balloon

import (
	"errors"
	"fmt"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/gas"
	"github.com/san-kum/buoy/internal/geometry"
	"github.com/san-kum/buoy/internal/units"
)

var ErrInvalidConfig = errors.New("balloon: invalid config")

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("balloon: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

type BurstCause int

const (
	Intact BurstCause = iota
	BurstAltitudeExceeded
	BurstOverexpanded
)

func (c BurstCause) String() string {
	switch c {
	case BurstAltitudeExceeded:
		return "altitude"
	case BurstOverexpanded:
		return "overexpansion"
	default:
		return "intact"
	}
}

// Config describes an envelope at spawn. The fill is given either as a gas
// mass or as a volume at the fill temperature and pressure; GasMass wins
// when both are set.
type Config struct {
	MaxVolume       units.Volume
	EnvelopeMass    units.Mass
	PayloadMass     units.Mass
	LiftGas         gas.Species
	GasMass         units.Mass
	FillVolume      units.Volume
	FillTemperature units.Temperature
	FillPressure    units.Pressure
	BurstAltitude   units.Length
}

func DefaultConfig() Config {
	return Config{
		MaxVolume:       units.CubicMeters(1000),
		EnvelopeMass:    units.Kilograms(2),
		PayloadMass:     units.Kilograms(1.5),
		LiftGas:         gas.Helium(),
		FillVolume:      units.CubicMeters(12),
		FillTemperature: units.Kelvin(293),
		FillPressure:    units.StandardPressure,
		BurstAltitude:   units.Meters(30000),
	}
}

func (c Config) Validate() error {
	if !units.Finite(float64(c.MaxVolume)) || c.MaxVolume <= 0 {
		return &ConfigError{Field: "max_volume", Reason: "must be positive"}
	}
	for _, m := range []struct {
		field string
		v     units.Mass
	}{{"envelope_mass", c.EnvelopeMass}, {"payload_mass", c.PayloadMass}, {"gas_mass", c.GasMass}} {
		if !units.Finite(float64(m.v)) || m.v < 0 {
			return &ConfigError{Field: m.field, Reason: "must be non-negative"}
		}
	}
	if !units.Finite(float64(c.FillVolume)) || c.FillVolume < 0 {
		return &ConfigError{Field: "fill_volume", Reason: "must be non-negative"}
	}
	if c.GasMass == 0 && c.FillVolume == 0 {
		return &ConfigError{Field: "fill", Reason: "needs a gas mass or a fill volume"}
	}
	if !units.Finite(float64(c.BurstAltitude)) {
		return &ConfigError{Field: "burst_altitude", Reason: "must be finite"}
	}
	if err := c.LiftGas.Validate(); err != nil {
		return &ConfigError{Field: "lift_gas", Reason: err.Error()}
	}
	return nil
}

// Envelope is the per-body balloon state. CurrentVolume and Radius are
// recomputed every tick; Burst never reverts once set.
type Envelope struct {
	MaxVolume     units.Volume
	EnvelopeMass  units.Mass
	PayloadMass   units.Mass
	LiftGas       gas.State
	BurstAltitude units.Length

	CurrentVolume units.Volume
	Radius        units.Length
	Burst         bool
	Cause         BurstCause
}

func New(cfg Config) (*Envelope, error) {
	if cfg.FillTemperature == 0 {
		cfg.FillTemperature = units.Kelvin(293)
	}
	if cfg.FillPressure == 0 {
		cfg.FillPressure = units.StandardPressure
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mass := cfg.GasMass
	if mass == 0 {
		rho, err := gas.Density(cfg.FillTemperature, cfg.FillPressure, cfg.LiftGas)
		if err != nil {
			return nil, fmt.Errorf("balloon: fill state: %w", err)
		}
		mass = units.MassOf(rho, cfg.FillVolume)
	}

	e := &Envelope{
		MaxVolume:     cfg.MaxVolume,
		EnvelopeMass:  cfg.EnvelopeMass,
		PayloadMass:   cfg.PayloadMass,
		LiftGas:       gas.NewState(cfg.LiftGas, cfg.FillTemperature, cfg.FillPressure, mass),
		BurstAltitude: cfg.BurstAltitude,
	}
	v, err := e.LiftGas.Volume()
	if err != nil {
		return nil, fmt.Errorf("balloon: fill state: %w", err)
	}
	e.CurrentVolume = v
	e.Radius = geometry.SphereRadiusFromVolume(v)
	return e, nil
}

// Update brings the lift gas into equilibrium with the ambient air at
// altitude and evaluates the burst transition.
func (e *Envelope) Update(altitude units.Length, ambient atmosphere.State) error {
	g := e.LiftGas.AtAmbient(ambient.Temperature, ambient.Pressure)
	v, err := g.Volume()
	if err != nil {
		return err
	}
	e.LiftGas = g
	e.CurrentVolume = v
	e.Radius = geometry.SphereRadiusFromVolume(v)

	if e.Burst {
		return nil
	}
	switch {
	case altitude > e.BurstAltitude:
		e.Burst, e.Cause = true, BurstAltitudeExceeded
	case v > e.MaxVolume:
		e.Burst, e.Cause = true, BurstOverexpanded
	}
	return nil
}

// TotalMass is envelope, payload and, while intact, lift gas.
func (e *Envelope) TotalMass() units.Mass {
	m := e.EnvelopeMass + e.PayloadMass
	if !e.Burst {
		m += e.LiftGas.Mass
	}
	return m
}

// DisplacedVolume is the volume that contributes buoyancy: zero once burst.
func (e *Envelope) DisplacedVolume() units.Volume {
	if e.Burst {
		return 0
	}
	return e.CurrentVolume
}

// FreeLift is the net upward mass balance ρ_air·V − m at the given ambient
// density. Positive free lift means the envelope rises.
func (e *Envelope) FreeLift(ambient units.Density) units.Mass {
	return units.MassOf(ambient, e.DisplacedVolume()) - e.TotalMass()
}
