package units

import (
	"fmt"
	"math"
)

type (
	Length       float64 // m
	Mass         float64 // kg
	Temperature  float64 // K
	Pressure     float64 // Pa
	Density      float64 // kg/m³
	Volume       float64 // m³
	Area         float64 // m²
	Force        float64 // N
	Acceleration float64 // m/s²
	Velocity     float64 // m/s
	MolarMass    float64 // kg/mol

	// MolarHeatCapacity is used only for the molar gas constant, J/(mol·K).
	MolarHeatCapacity float64
)

const celsiusOffset = 273.15

func Meters(v float64) Length                         { return Length(v) }
func Kilometers(v float64) Length                     { return Length(v * 1000) }
func Kilograms(v float64) Mass                        { return Mass(v) }
func Kelvin(v float64) Temperature                    { return Temperature(v) }
func Celsius(v float64) Temperature                   { return Temperature(v + celsiusOffset) }
func Pascals(v float64) Pressure                      { return Pressure(v) }
func Kilopascals(v float64) Pressure                  { return Pressure(v * 1000) }
func KilogramsPerCubicMeter(v float64) Density        { return Density(v) }
func CubicMeters(v float64) Volume                    { return Volume(v) }
func SquareMeters(v float64) Area                     { return Area(v) }
func Newtons(v float64) Force                         { return Force(v) }
func MetersPerSecondSquared(v float64) Acceleration   { return Acceleration(v) }
func MetersPerSecond(v float64) Velocity              { return Velocity(v) }
func KilogramsPerMole(v float64) MolarMass            { return MolarMass(v) }
func JoulesPerMoleKelvin(v float64) MolarHeatCapacity { return MolarHeatCapacity(v) }

func (l Length) Meters() float64                       { return float64(l) }
func (l Length) Kilometers() float64                   { return float64(l) / 1000 }
func (m Mass) Kilograms() float64                      { return float64(m) }
func (t Temperature) Kelvin() float64                  { return float64(t) }
func (t Temperature) Celsius() float64                 { return float64(t) - celsiusOffset }
func (p Pressure) Pascals() float64                    { return float64(p) }
func (p Pressure) Kilopascals() float64                { return float64(p) / 1000 }
func (d Density) KilogramsPerCubicMeter() float64      { return float64(d) }
func (v Volume) CubicMeters() float64                  { return float64(v) }
func (a Area) SquareMeters() float64                   { return float64(a) }
func (f Force) Newtons() float64                       { return float64(f) }
func (a Acceleration) MetersPerSecondSquared() float64 { return float64(a) }
func (v Velocity) MetersPerSecond() float64            { return float64(v) }
func (m MolarMass) KilogramsPerMole() float64          { return float64(m) }

func (l Length) String() string       { return fmt.Sprintf("%g m", float64(l)) }
func (m Mass) String() string         { return fmt.Sprintf("%g kg", float64(m)) }
func (t Temperature) String() string  { return fmt.Sprintf("%g K", float64(t)) }
func (p Pressure) String() string     { return fmt.Sprintf("%g Pa", float64(p)) }
func (d Density) String() string      { return fmt.Sprintf("%g kg/m³", float64(d)) }
func (v Volume) String() string       { return fmt.Sprintf("%g m³", float64(v)) }
func (a Area) String() string         { return fmt.Sprintf("%g m²", float64(a)) }
func (f Force) String() string        { return fmt.Sprintf("%g N", float64(f)) }
func (a Acceleration) String() string { return fmt.Sprintf("%g m/s²", float64(a)) }
func (v Velocity) String() string     { return fmt.Sprintf("%g m/s", float64(v)) }
func (m MolarMass) String() string    { return fmt.Sprintf("%g kg/mol", float64(m)) }

// MassOf is the mass of a volume of fluid with the given density.
func MassOf(d Density, v Volume) Mass {
	return Mass(float64(d) * float64(v))
}

// WeightOf is the magnitude of the gravitational force on a mass.
func WeightOf(m Mass, g Acceleration) Force {
	return Force(float64(m) * float64(g))
}

// Moles returns the amount of substance, in mol, of a mass of gas.
func Moles(m Mass, molar MolarMass) float64 {
	return float64(m) / float64(molar)
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
