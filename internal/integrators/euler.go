package integrators

import "github.com/san-kum/buoy/internal/flight"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn flight.Dynamics, x flight.State, t float64, dt float64) flight.State {
	dx := dyn.Derive(x, t)
	result := make(flight.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

// SemiImplicitEuler updates velocities first and moves positions with the
// new velocities. The state must be [positions..., velocities...].
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(dyn flight.Dynamics, x flight.State, t float64, dt float64) flight.State {
	n := len(x)
	half := n / 2
	dx := dyn.Derive(x, t)
	result := make(flight.State, n)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dt*dx[half+i]
		result[i] = x[i] + dt*result[half+i]
	}
	return result
}
