package flight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/buoy/internal/atmosphere"
)

var (
	ErrInvalidConfig = errors.New("flight: invalid config")
	ErrTooManyBodies = errors.New("flight: too many bodies")
	ErrInvalidState  = errors.New("flight: invalid state")
)

type FaultPolicy int

const (
	// Skip holds the body in place for the failing tick and retries on the next.
	Skip FaultPolicy = iota
	// Clamp re-evaluates an out-of-bounds body at the nearest valid altitude.
	Clamp
	// Flag marks the body faulted and stops stepping it.
	Flag
)

func (p FaultPolicy) String() string {
	switch p {
	case Clamp:
		return "clamp"
	case Flag:
		return "flag"
	default:
		return "skip"
	}
}

func ParsePolicy(s string) (FaultPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return Skip, nil
	case "clamp":
		return Clamp, nil
	case "flag":
		return Flag, nil
	}
	return Skip, fmt.Errorf("%w: unknown fault policy %q", ErrInvalidConfig, s)
}

// Fault records a per-body failure and how it was handled. A body that
// keeps failing the same way is recorded once; Ticks counts the run of
// consecutive ticks starting at Step.
type Fault struct {
	Body   int
	Step   int
	Time   float64
	Ticks  int
	Action string
	Err    error
}

func (f *Fault) Error() string {
	if f.Ticks > 1 {
		return fmt.Sprintf("body %d step %d (t=%.2f, %d ticks): %s: %v", f.Body, f.Step, f.Time, f.Ticks, f.Action, f.Err)
	}
	return fmt.Sprintf("body %d step %d (t=%.2f): %s: %v", f.Body, f.Step, f.Time, f.Action, f.Err)
}

// continues reports whether f repeats the open fault g on the next tick.
func (f *Fault) continues(g *Fault) bool {
	if g == nil || g.Action != f.Action {
		return false
	}
	return errors.Is(f.Err, atmosphere.ErrAltitudeOutOfBounds) && errors.Is(g.Err, atmosphere.ErrAltitudeOutOfBounds)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
