package metrics

import (
	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/units"
)

// SpecificEnergy is the mean mechanical energy per unit mass, ½|v|² + g0·h,
// over all observed samples.
type SpecificEnergy struct {
	name    string
	total   float64
	samples int
}

func NewSpecificEnergy() *SpecificEnergy {
	return &SpecificEnergy{name: "specific_energy"}
}

func (e *SpecificEnergy) Name() string { return e.name }

func (e *SpecificEnergy) Observe(s flight.Sample) {
	v := s.Velocity.Norm()
	e.total += 0.5*v*v + float64(units.StandardGravity)*s.Altitude()
	e.samples++
}

func (e *SpecificEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *SpecificEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// NetForce is the mean magnitude of the net force applied to active bodies.
type NetForce struct {
	name    string
	sum     float64
	samples int
}

func NewNetForce() *NetForce {
	return &NetForce{name: "net_force"}
}

func (n *NetForce) Name() string { return n.name }

func (n *NetForce) Observe(s flight.Sample) {
	if s.Status != flight.Active {
		return
	}
	n.sum += s.NetForce.Norm()
	n.samples++
}

func (n *NetForce) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return n.sum / float64(n.samples)
}

func (n *NetForce) Reset() {
	n.sum = 0
	n.samples = 0
}
