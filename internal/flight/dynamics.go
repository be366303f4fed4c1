package flight

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/balloon"
	"github.com/san-kum/buoy/internal/forces"
	"github.com/san-kum/buoy/internal/units"
)

// tickDynamics holds weight and buoyancy fixed for one tick, as evaluated
// by the core at the start of the tick, and re-evaluates drag at the
// integrator's intermediate velocities.
type tickDynamics struct {
	static  r3.Vector
	mass    float64
	density units.Density
	area    units.Area
	cd      float64
}

func newTickDynamics(out balloon.Outcome) *tickDynamics {
	return &tickDynamics{
		static:  out.Forces.Weight.Add(out.Forces.Buoyancy),
		mass:    out.Envelope.TotalMass().Kilograms(),
		density: out.Ambient.Density,
		area:    out.Area,
		cd:      out.Forces.DragCoefficient,
	}
}

func (d *tickDynamics) Derive(x State, t float64) State {
	v := x.Velocity()
	f := d.static.Add(forces.Drag(v, d.density, d.area, d.cd))
	a := f.Mul(1 / d.mass)
	return State{v.X, v.Y, v.Z, a.X, a.Y, a.Z}
}
