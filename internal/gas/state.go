package gas

import "github.com/san-kum/buoy/internal/units"

// State is a quantity of an ideal gas. Volume and density are derived on
// demand and never stored.
type State struct {
	Species     Species
	Mass        units.Mass
	Temperature units.Temperature
	Pressure    units.Pressure
}

func NewState(s Species, t units.Temperature, p units.Pressure, m units.Mass) State {
	return State{Species: s, Mass: m, Temperature: t, Pressure: p}
}

func (g State) Volume() (units.Volume, error) {
	return Volume(g.Temperature, g.Pressure, g.Mass, g.Species)
}

func (g State) Density() (units.Density, error) {
	return Density(g.Temperature, g.Pressure, g.Species)
}

func (g State) WithMass(m units.Mass) State {
	g.Mass = m
	return g
}

// AtAmbient returns the state after the gas reaches thermal and pressure
// equilibrium with its surroundings.
func (g State) AtAmbient(t units.Temperature, p units.Pressure) State {
	g.Temperature = t
	g.Pressure = p
	return g
}
