package flight

import (
	"math"

	"github.com/golang/geo/r3"
)

// State is the kinematic state of one body: [px, py, pz, vx, vy, vz].
// Positions come first so integrators can split it in half.
type State []float64

const StateDim = 6

func NewState(pos, vel r3.Vector) State {
	return State{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z}
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Position() r3.Vector { return r3.Vector{X: s[0], Y: s[1], Z: s[2]} }
func (s State) Velocity() r3.Vector { return r3.Vector{X: s[3], Y: s[4], Z: s[5]} }

// Altitude is the height along the world up axis.
func (s State) Altitude() float64 { return s[1] }

// Dynamics yields dx/dt for a state at time t.
type Dynamics interface {
	Derive(x State, t float64) State
}

type Integrator interface {
	Step(dyn Dynamics, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(t float64, samples []Sample)
}

type Config struct {
	Dt       float64
	Duration float64

	// Workers bounds how many goroutines evaluate bodies in one tick.
	Workers int
	// MaxBodies is the per-tick body budget. Zero means DefaultMaxBodies.
	MaxBodies int
	// SampleEvery records telemetry every n ticks; zero means every tick.
	SampleEvery int

	Policy      FaultPolicy
	GroundLevel float64
}

const (
	DefaultDt        = 0.1
	DefaultDuration  = 3 * 3600.0
	DefaultWorkers   = 4
	DefaultMaxBodies = 1024
)

func DefaultConfig() Config {
	return Config{
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Workers:   DefaultWorkers,
		MaxBodies: DefaultMaxBodies,
		Policy:    Skip,
	}
}

// Sample is one telemetry record for one body.
type Sample struct {
	Time        float64
	Body        int
	Position    r3.Vector
	Velocity    r3.Vector
	Volume      float64
	Radius      float64
	Temperature float64
	Pressure    float64
	Density     float64
	NetForce    r3.Vector
	Burst       bool
	Status      Status
}

func (s Sample) Altitude() float64 { return s.Position.Y }

type Result struct {
	Times      []float64
	Tracks     [][]Sample
	Metrics    map[string]float64
	StepsTaken int
	Faults     []*Fault
	Bodies     []*Body
}
