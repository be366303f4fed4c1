package atmosphere

import (
	"math"

	"github.com/san-kum/buoy/internal/gas"
	"github.com/san-kum/buoy/internal/log"
	"github.com/san-kum/buoy/internal/units"
)

const (
	MinAltitude = -56.0
	MaxAltitude = 85000.0

	tropopause   = 11000.0
	stratosphere = 25000.0
)

type band int

const (
	troposphere band = iota
	lowerStratosphere
	upperStratosphere
)

func (b band) String() string {
	switch b {
	case troposphere:
		return "troposphere"
	case lowerStratosphere:
		return "lower stratosphere"
	default:
		return "upper stratosphere"
	}
}

// State is the ambient atmosphere at one altitude.
type State struct {
	Altitude    units.Length
	Temperature units.Temperature
	Pressure    units.Pressure
	Density     units.Density
}

// StandardAtmosphere1976 evaluates the piecewise US Standard Atmosphere.
// The zero value is ready to use and silent; set Log to record
// out-of-bounds queries.
type StandardAtmosphere1976 struct {
	Log *log.Logger
}

func (a StandardAtmosphere1976) bandOf(h units.Length) (band, error) {
	m := h.Meters()
	if math.IsNaN(m) || m < MinAltitude || m > MaxAltitude {
		if a.Log != nil {
			a.Log.Warn("altitude out of bounds", "altitude", m, "min", MinAltitude, "max", MaxAltitude)
		}
		return 0, &AltitudeOutOfBoundsError{Altitude: m, Min: MinAltitude, Max: MaxAltitude}
	}
	switch {
	case m < tropopause:
		return troposphere, nil
	case m < stratosphere:
		return lowerStratosphere, nil
	default:
		return upperStratosphere, nil
	}
}

func (a StandardAtmosphere1976) numeric(h units.Length, quantity string, v float64) error {
	err := &NumericError{Altitude: h.Meters(), Quantity: quantity, Value: v}
	if a.Log != nil {
		a.Log.Error("atmosphere model produced an invalid value", "altitude", h.Meters(), "quantity", quantity, "value", v)
	}
	return err
}

func bandTemperature(b band, m float64) float64 {
	switch b {
	case troposphere:
		return 15.04 - 0.00649*m
	case lowerStratosphere:
		return -56.46
	default:
		return -131.21 + 0.00299*m
	}
}

// bandPressure returns kPa; tk is the band temperature in kelvin.
func bandPressure(b band, m, tk float64) float64 {
	switch b {
	case troposphere:
		return 101.29 * math.Pow(tk/288.08, 5.256)
	case lowerStratosphere:
		return 22.65 * math.Exp(1.73-0.000157*m)
	default:
		return 2.488 * math.Pow(tk/216.6, -11.388)
	}
}

// temperature resolves the band once; pressure and density build on it.
func (a StandardAtmosphere1976) temperature(h units.Length) (band, units.Temperature, error) {
	b, err := a.bandOf(h)
	if err != nil {
		return 0, 0, err
	}
	t := units.Celsius(bandTemperature(b, h.Meters()))
	if !units.Finite(float64(t)) || t <= 0 {
		return 0, 0, a.numeric(h, "temperature", float64(t))
	}
	return b, t, nil
}

func (a StandardAtmosphere1976) pressure(h units.Length, b band, t units.Temperature) (units.Pressure, error) {
	p := units.Kilopascals(bandPressure(b, h.Meters(), t.Kelvin()))
	if !units.Finite(float64(p)) || p <= 0 {
		return 0, a.numeric(h, "pressure", float64(p))
	}
	return p, nil
}

// Temperature at geometric altitude h.
func (a StandardAtmosphere1976) Temperature(h units.Length) (units.Temperature, error) {
	_, t, err := a.temperature(h)
	return t, err
}

// Pressure at geometric altitude h.
func (a StandardAtmosphere1976) Pressure(h units.Length) (units.Pressure, error) {
	b, t, err := a.temperature(h)
	if err != nil {
		return 0, err
	}
	return a.pressure(h, b, t)
}

// Density of dry air at geometric altitude h. Temperature and pressure
// errors are returned unchanged.
func (a StandardAtmosphere1976) Density(h units.Length) (units.Density, error) {
	s, err := a.State(h)
	if err != nil {
		return 0, err
	}
	return s.Density, nil
}

func (a StandardAtmosphere1976) State(h units.Length) (State, error) {
	b, t, err := a.temperature(h)
	if err != nil {
		return State{}, err
	}
	p, err := a.pressure(h, b, t)
	if err != nil {
		return State{}, err
	}
	rho, err := gas.Density(t, p, gas.Air())
	if err != nil || !units.Finite(float64(rho)) || rho <= 0 {
		return State{}, a.numeric(h, "density", float64(rho))
	}
	return State{Altitude: h, Temperature: t, Pressure: p, Density: rho}, nil
}

// SpeedOfSound in dry air at geometric altitude h.
func (a StandardAtmosphere1976) SpeedOfSound(h units.Length) (units.Velocity, error) {
	t, err := a.Temperature(h)
	if err != nil {
		return 0, err
	}
	return gas.SpeedOfSound(t, gas.Air())
}

// Band names the layer that h resolves to.
func (a StandardAtmosphere1976) Band(h units.Length) (string, error) {
	b, err := a.bandOf(h)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// DensityAtSTP is the density of dry air at 273.15 K and 101325 Pa.
func DensityAtSTP() units.Density {
	rho, _ := gas.Density(units.StandardTemperature, units.StandardPressure, gas.Air())
	return rho
}

// SeaLevelDensity is the density of dry air at 288.15 K and 101325 Pa.
func SeaLevelDensity() units.Density {
	rho, _ := gas.Density(units.SeaLevelTemperature, units.StandardPressure, gas.Air())
	return rho
}

// GeopotentialAltitude converts geometric altitude h to geopotential
// altitude r·h/(r+h).
func GeopotentialAltitude(h units.Length) units.Length {
	r := units.EarthRadius.Meters()
	return units.Meters(r * h.Meters() / (r + h.Meters()))
}
