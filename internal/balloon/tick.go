package balloon

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/forces"
	"github.com/san-kum/buoy/internal/geometry"
	"github.com/san-kum/buoy/internal/units"
)

// Atmosphere is the ambient model a tick is evaluated against.
type Atmosphere interface {
	State(h units.Length) (atmosphere.State, error)
}

// Snapshot is the immutable per-body input of one tick.
type Snapshot struct {
	Altitude units.Length
	Velocity r3.Vector

	// Shape is the collider used for drag area. Nil means a sphere of the
	// envelope's current radius.
	Shape    geometry.Shape
	Drag     forces.DragModel
	Envelope Envelope
}

// Outcome is the result of one tick: the forces to apply and the envelope
// value to carry into the next tick.
type Outcome struct {
	Forces   forces.Breakdown
	Ambient  atmosphere.State
	Area     units.Area
	Envelope Envelope

	// Burst is set on the tick the envelope bursts.
	Burst bool
}

// Tick evaluates one body for one tick. The snapshot is not modified.
func Tick(atm Atmosphere, s Snapshot) (Outcome, error) {
	ambient, err := atm.State(s.Altitude)
	if err != nil {
		return Outcome{}, fmt.Errorf("balloon: ambient at %gm: %w", s.Altitude.Meters(), err)
	}

	env := s.Envelope
	wasBurst := env.Burst
	if err := env.Update(s.Altitude, ambient); err != nil {
		return Outcome{}, fmt.Errorf("balloon: envelope at %gm: %w", s.Altitude.Meters(), err)
	}

	shape := s.Shape
	if shape == nil {
		shape = geometry.Sphere{Radius: env.Radius}
	}
	area := geometry.ProjectedAreaOrDefault(shape, s.Velocity)

	b := forces.Evaluate(forces.Inputs{
		Altitude:             s.Altitude,
		Velocity:             s.Velocity,
		Mass:                 env.TotalMass(),
		DisplacedVolume:      env.DisplacedVolume(),
		AmbientDensity:       ambient.Density,
		Area:                 area,
		Drag:                 s.Drag,
		CharacteristicLength: 2 * env.Radius,
	})

	return Outcome{
		Forces:   b,
		Ambient:  ambient,
		Area:     area,
		Envelope: env,
		Burst:    env.Burst && !wasBurst,
	}, nil
}
