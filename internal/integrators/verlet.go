package integrators

import "github.com/san-kum/buoy/internal/flight"

// Verlet is velocity Verlet extended to velocity-dependent forces such as
// drag. The end-of-step acceleration is taken at a predicted velocity and
// refined once, which keeps the scheme second order. When the force depends
// on position only it reduces to the classic symplectic form.
type Verlet struct {
	trial flight.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn flight.Dynamics, x flight.State, t, dt float64) flight.State {
	n := len(x)
	half := n / 2
	if len(v.trial) != n {
		v.trial = make(flight.State, n)
	}

	result := make(flight.State, n)
	a0 := dyn.Derive(x, t)

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*a0[half+i]*dt*dt
		v.trial[i] = result[i]
		v.trial[half+i] = x[half+i] + a0[half+i]*dt
	}

	halfDt := 0.5 * dt
	for pass := 0; pass < 2; pass++ {
		a1 := dyn.Derive(v.trial, t+dt)
		for i := 0; i < half; i++ {
			v.trial[half+i] = x[half+i] + (a0[half+i]+a1[half+i])*halfDt
		}
	}

	copy(result[half:], v.trial[half:])
	return result
}

// Leapfrog is kick-drift-kick. The closing kick sees the half-step velocity
// extrapolated to the end of the step.
type Leapfrog struct {
	scratch flight.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn flight.Dynamics, x flight.State, t, dt float64) flight.State {
	n := len(x)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(flight.State, n)
	}

	result := make(flight.State, n)
	a0 := dyn.Derive(x, t)
	halfDt := dt * 0.5

	for i := 0; i < half; i++ {
		vHalf := x[half+i] + a0[half+i]*halfDt
		result[i] = x[i] + vHalf*dt
		result[half+i] = vHalf
		l.scratch[i] = result[i]
		l.scratch[half+i] = 2*vHalf - x[half+i]
	}

	a1 := dyn.Derive(l.scratch, t+dt)
	for i := 0; i < half; i++ {
		result[half+i] += a1[half+i] * halfDt
	}
	return result
}
