// Package integrators provides fixed-step integrators over flight.State.
package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/buoy/internal/flight"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

var factories = map[string]func() flight.Integrator{
	"euler":         func() flight.Integrator { return NewEuler() },
	"semi-implicit": func() flight.Integrator { return NewSemiImplicitEuler() },
	"rk4":           func() flight.Integrator { return NewRK4() },
	"rk45":          func() flight.Integrator { return NewRK45() },
	"verlet":        func() flight.Integrator { return NewVerlet() },
	"leapfrog":      func() flight.Integrator { return NewLeapfrog() },
}

// New returns a constructor for the named integrator. The runner calls it
// once per worker.
func New(name string) (func() flight.Integrator, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownIntegrator, name, Names())
	}
	return f, nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
