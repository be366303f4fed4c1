package integrators

import "github.com/san-kum/buoy/internal/flight"

// RK4 is the classic fourth-order Runge-Kutta method. It keeps scratch
// buffers, so one instance must not be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 flight.State
	scratch        flight.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(flight.State, n)
		r.k2 = make(flight.State, n)
		r.k3 = make(flight.State, n)
		r.k4 = make(flight.State, n)
		r.scratch = make(flight.State, n)
	}
}

// stage writes x + h·k into the scratch buffer.
func (r *RK4) stage(x, k flight.State, h float64) flight.State {
	for i := range x {
		r.scratch[i] = x[i] + h*k[i]
	}
	return r.scratch
}

func (r *RK4) Step(dyn flight.Dynamics, x flight.State, t, dt float64) flight.State {
	r.ensureScratch(len(x))
	half := dt * 0.5

	copy(r.k1, dyn.Derive(x, t))
	copy(r.k2, dyn.Derive(r.stage(x, r.k1, half), t+half))
	copy(r.k3, dyn.Derive(r.stage(x, r.k2, half), t+half))
	copy(r.k4, dyn.Derive(r.stage(x, r.k3, dt), t+dt))

	result := make(flight.State, len(x))
	dt6 := dt / 6.0
	for i := range x {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}
