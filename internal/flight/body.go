package flight

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/balloon"
	"github.com/san-kum/buoy/internal/forces"
	"github.com/san-kum/buoy/internal/geometry"
)

type Status int

const (
	Active Status = iota
	Landed
	Faulted
)

func ParseStatus(s string) (Status, bool) {
	switch s {
	case "active":
		return Active, true
	case "landed":
		return Landed, true
	case "faulted":
		return Faulted, true
	}
	return Active, false
}

func (s Status) String() string {
	switch s {
	case Landed:
		return "landed"
	case Faulted:
		return "faulted"
	default:
		return "active"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("flight: unknown status %q", b)
	}
	*s = st
	return nil
}

// Body is one simulated balloon. A body is only ever touched by one worker
// per tick.
type Body struct {
	ID       int
	Name     string
	State    State
	Envelope balloon.Envelope
	Shape    geometry.Shape
	Drag     forces.DragModel
	Status   Status

	// BurstTime and BurstAltitude are set on the tick the envelope bursts.
	BurstTime     float64
	BurstAltitude float64

	last      balloon.Outcome
	hasLast   bool
	openFault *Fault
}

func NewBody(id int, name string, env *balloon.Envelope, pos r3.Vector) *Body {
	return &Body{
		ID:       id,
		Name:     name,
		State:    NewState(pos, r3.Vector{}),
		Envelope: *env,
		Drag:     forces.ConstantDrag(0.47),
	}
}

func (b *Body) Active() bool { return b.Status == Active }

func (b *Body) sample(t float64) Sample {
	s := Sample{
		Time:     t,
		Body:     b.ID,
		Position: b.State.Position(),
		Velocity: b.State.Velocity(),
		Volume:   b.Envelope.CurrentVolume.CubicMeters(),
		Radius:   b.Envelope.Radius.Meters(),
		Burst:    b.Envelope.Burst,
		Status:   b.Status,
	}
	if b.hasLast {
		s.Temperature = b.last.Ambient.Temperature.Kelvin()
		s.Pressure = b.last.Ambient.Pressure.Pascals()
		s.Density = b.last.Ambient.Density.KilogramsPerCubicMeter()
		s.NetForce = b.last.Forces.Net
	}
	return s
}
