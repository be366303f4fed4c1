package gas

import (
	"math"

	"github.com/san-kum/buoy/internal/units"
)

func checkPositive(param string, v float64) error {
	if !units.Finite(v) || v <= 0 {
		return &InvalidInputError{Param: param, Value: v}
	}
	return nil
}

func checkState(t units.Temperature, p units.Pressure, s Species) error {
	if err := checkPositive("temperature", float64(t)); err != nil {
		return err
	}
	if err := checkPositive("pressure", float64(p)); err != nil {
		return err
	}
	return checkPositive("molar_mass", float64(s.MolarMass))
}

// Volume of an ideal gas: V = (m/M)·R·T/P.
func Volume(t units.Temperature, p units.Pressure, m units.Mass, s Species) (units.Volume, error) {
	if err := checkState(t, p, s); err != nil {
		return 0, err
	}
	if !units.Finite(float64(m)) || m < 0 {
		return 0, &InvalidInputError{Param: "mass", Value: float64(m)}
	}
	n := units.Moles(m, s.MolarMass)
	return units.Volume(n * float64(units.GasConstant) * float64(t) / float64(p)), nil
}

// Density of an ideal gas: ρ = M·P/(R·T).
func Density(t units.Temperature, p units.Pressure, s Species) (units.Density, error) {
	if err := checkState(t, p, s); err != nil {
		return 0, err
	}
	return units.Density(float64(s.MolarMass) * float64(p) / (float64(units.GasConstant) * float64(t))), nil
}

// Pressure of an ideal gas from its temperature and density: P = ρ·R_s·T.
func Pressure(t units.Temperature, rho units.Density, s Species) (units.Pressure, error) {
	if err := checkPositive("temperature", float64(t)); err != nil {
		return 0, err
	}
	if err := checkPositive("density", float64(rho)); err != nil {
		return 0, err
	}
	if err := checkPositive("molar_mass", float64(s.MolarMass)); err != nil {
		return 0, err
	}
	return units.Pressure(float64(rho) * SpecificGasConstant(s) * float64(t)), nil
}

// Temperature of an ideal gas from its pressure and density: T = P/(ρ·R_s).
func Temperature(p units.Pressure, rho units.Density, s Species) (units.Temperature, error) {
	if err := checkPositive("pressure", float64(p)); err != nil {
		return 0, err
	}
	if err := checkPositive("density", float64(rho)); err != nil {
		return 0, err
	}
	if err := checkPositive("molar_mass", float64(s.MolarMass)); err != nil {
		return 0, err
	}
	return units.Temperature(float64(p) / (float64(rho) * SpecificGasConstant(s))), nil
}

// SpecificGasConstant is R/M in J/(kg·K).
func SpecificGasConstant(s Species) float64 {
	return float64(units.GasConstant) / float64(s.MolarMass)
}

// SpeedOfSound in the gas at temperature t: a = sqrt(γ·R_s·T).
func SpeedOfSound(t units.Temperature, s Species) (units.Velocity, error) {
	if err := checkPositive("temperature", float64(t)); err != nil {
		return 0, err
	}
	if err := checkPositive("molar_mass", float64(s.MolarMass)); err != nil {
		return 0, err
	}
	return units.Velocity(math.Sqrt(s.Gamma() * SpecificGasConstant(s) * float64(t))), nil
}
