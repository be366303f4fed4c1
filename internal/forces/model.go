package forces

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/units"
)

const CriticalReynolds = 1e5

// DragModel adjusts a base drag coefficient around the drag crisis: Base·(1+s)
// in the laminar regime and Base·(1−s) past the critical Reynolds number.
// A zero ReynoldsScaling yields the base coefficient unchanged.
type DragModel struct {
	Base             float64 `yaml:"base" json:"base"`
	ReynoldsScaling  float64 `yaml:"reynolds_scaling" json:"reynolds_scaling"`
	CriticalReynolds float64 `yaml:"critical_reynolds,omitempty" json:"critical_reynolds,omitempty"`
}

func ConstantDrag(cd float64) DragModel {
	return DragModel{Base: cd}
}

func (m DragModel) Coefficient(re float64) float64 {
	if m.ReynoldsScaling == 0 {
		return m.Base
	}
	critical := m.CriticalReynolds
	if critical <= 0 {
		critical = CriticalReynolds
	}
	if re < critical {
		return m.Base * (1 + m.ReynoldsScaling)
	}
	return m.Base * (1 - m.ReynoldsScaling)
}

// Inputs is everything needed to evaluate the forces on one body for one tick.
type Inputs struct {
	Altitude        units.Length
	Velocity        r3.Vector
	Mass            units.Mass
	DisplacedVolume units.Volume
	AmbientDensity  units.Density
	Area            units.Area
	Drag            DragModel

	// CharacteristicLength feeds the Reynolds number; typically the diameter.
	CharacteristicLength units.Length
}

type Breakdown struct {
	Gravity         units.Acceleration
	Reynolds        float64
	DragCoefficient float64

	Weight   r3.Vector
	Buoyancy r3.Vector
	Drag     r3.Vector
	Net      r3.Vector
}

func Evaluate(in Inputs) Breakdown {
	g := LocalGravity(in.Altitude)
	re := ReynoldsNumber(units.Velocity(in.Velocity.Norm()), in.CharacteristicLength, in.AmbientDensity, AirViscosity)
	cd := in.Drag.Coefficient(re)

	b := Breakdown{
		Gravity:         g,
		Reynolds:        re,
		DragCoefficient: cd,
		Weight:          Weight(in.Mass, g),
		Buoyancy:        Buoyancy(g, in.DisplacedVolume, in.AmbientDensity),
		Drag:            Drag(in.Velocity, in.AmbientDensity, in.Area, cd),
	}
	b.Net = Net(b.Weight, b.Buoyancy, b.Drag)
	return b
}
