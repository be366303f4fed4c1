// Package forces computes the forces acting on a lighter-than-air body.
// Every function is pure; integrating forces into motion is the caller's job.
package forces

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/units"
)

const (
	// DragEpsilon is the speed below which drag is treated as zero.
	DragEpsilon = 0.001 // m/s

	// AirViscosity is the dynamic viscosity of air used for Reynolds numbers.
	AirViscosity = 1.81e-5 // Pa·s
)

var up = r3.Vector{X: 0, Y: 1, Z: 0}

// ScaleGravity is the ratio R/(R+h) of the Earth's radius to the distance
// from its center. It is 1 at sea level and 0.5 at h = R.
func ScaleGravity(h units.Length) float64 {
	r := units.EarthRadius.Meters()
	return r / (r + h.Meters())
}

// LocalGravity is standard gravity scaled for altitude h.
func LocalGravity(h units.Length) units.Acceleration {
	return units.Acceleration(float64(units.StandardGravity) * ScaleGravity(h))
}

// Weight points down (-Y) with magnitude g·m.
func Weight(m units.Mass, g units.Acceleration) r3.Vector {
	return up.Mul(-units.WeightOf(m, g).Newtons())
}

// Buoyancy points up (+Y) with magnitude g·V·ρ.
func Buoyancy(g units.Acceleration, v units.Volume, rho units.Density) r3.Vector {
	return up.Mul(units.WeightOf(units.MassOf(rho, v), g).Newtons())
}

// Drag is the quadratic drag force -½·Cd·ρ·A·|v|·v. It is zero at speeds
// below DragEpsilon.
func Drag(v r3.Vector, rho units.Density, a units.Area, cd float64) r3.Vector {
	speed := v.Norm()
	if !units.Finite(speed) || speed < DragEpsilon {
		return r3.Vector{}
	}
	return v.Mul(-0.5 * cd * rho.KilogramsPerCubicMeter() * a.SquareMeters() * speed)
}

func Net(weight, buoyancy, drag r3.Vector) r3.Vector {
	return weight.Add(buoyancy).Add(drag)
}

// ReynoldsNumber is ρ·|v|·L/μ for characteristic length L.
func ReynoldsNumber(speed units.Velocity, length units.Length, rho units.Density, mu float64) float64 {
	if mu <= 0 {
		return 0
	}
	return rho.KilogramsPerCubicMeter() * speed.MetersPerSecond() * length.Meters() / mu
}
