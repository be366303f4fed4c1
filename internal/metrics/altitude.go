// Package metrics reduces flight telemetry to scalar figures.
package metrics

import (
	"math"

	"github.com/san-kum/buoy/internal/flight"
)

type MaxAltitude struct {
	name string
	max  float64
	seen bool
}

func NewMaxAltitude() *MaxAltitude {
	return &MaxAltitude{name: "max_altitude"}
}

func (m *MaxAltitude) Name() string { return m.name }

func (m *MaxAltitude) Observe(s flight.Sample) {
	if !m.seen || s.Altitude() > m.max {
		m.max = s.Altitude()
		m.seen = true
	}
}

func (m *MaxAltitude) Value() float64 { return m.max }

func (m *MaxAltitude) Reset() {
	m.max = 0
	m.seen = false
}

// BurstAltitude is the lowest altitude at which any body was first seen
// burst. It is NaN when nothing burst.
type BurstAltitude struct {
	name  string
	seen  map[int]bool
	value float64
}

func NewBurstAltitude() *BurstAltitude {
	return &BurstAltitude{name: "burst_altitude", seen: make(map[int]bool), value: math.NaN()}
}

func (b *BurstAltitude) Name() string { return b.name }

func (b *BurstAltitude) Observe(s flight.Sample) {
	if !s.Burst || b.seen[s.Body] {
		return
	}
	b.seen[s.Body] = true
	if math.IsNaN(b.value) || s.Altitude() < b.value {
		b.value = s.Altitude()
	}
}

func (b *BurstAltitude) Value() float64 { return b.value }

func (b *BurstAltitude) Reset() {
	b.seen = make(map[int]bool)
	b.value = math.NaN()
}

// VerticalRate is the extreme vertical speed seen: the fastest ascent, or
// with descending set, the fastest descent as a positive number.
type VerticalRate struct {
	name       string
	descending bool
	max        float64
}

func NewMaxAscentRate() *VerticalRate {
	return &VerticalRate{name: "max_ascent_rate"}
}

func NewMaxDescentRate() *VerticalRate {
	return &VerticalRate{name: "max_descent_rate", descending: true}
}

func (r *VerticalRate) Name() string { return r.name }

func (r *VerticalRate) Observe(s flight.Sample) {
	v := s.Velocity.Y
	if r.descending {
		v = -v
	}
	r.max = math.Max(r.max, v)
}

func (r *VerticalRate) Value() float64 { return r.max }

func (r *VerticalRate) Reset() { r.max = 0 }

// Default is the metric set the CLI records for every flight.
func Default() []flight.Metric {
	return []flight.Metric{
		NewMaxAltitude(),
		NewBurstAltitude(),
		NewMaxAscentRate(),
		NewMaxDescentRate(),
		NewSpecificEnergy(),
		NewNetForce(),
	}
}
