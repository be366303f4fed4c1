package flight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/balloon"
	"github.com/san-kum/buoy/internal/log"
	"github.com/san-kum/buoy/internal/units"
)

// Runner steps a set of bodies with a fixed timestep. Each tick it asks the
// core for every body's forces and envelope state, then integrates.
type Runner struct {
	atm       balloon.Atmosphere
	integs    sync.Pool
	metrics   []Metric
	observers []Observer
	lg        *log.Logger
}

// NewRunner returns a Runner. newIntegrator is called once per concurrent
// worker since integrators may keep scratch buffers.
func NewRunner(atm balloon.Atmosphere, newIntegrator func() Integrator, lg *log.Logger) *Runner {
	return &Runner{
		atm: atm,
		integs: sync.Pool{
			New: func() interface{} {
				return newIntegrator()
			},
		},
		lg: lg,
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, bodies []*Body, cfg Config) (*Result, error) {
	if err := validateConfig(cfg, bodies); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	sampleEvery := cfg.SampleEvery
	if sampleEvery <= 0 {
		sampleEvery = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(bodies) {
		workers = len(bodies)
	}
	chunkSize := (len(bodies) + workers - 1) / workers

	result := &Result{
		Times:   make([]float64, 0, steps/sampleEvery+2),
		Tracks:  make([][]Sample, len(bodies)),
		Metrics: make(map[string]float64),
		Bodies:  bodies,
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	r.lg.Info("flight started", "bodies", len(bodies), "dt", cfg.Dt, "duration", cfg.Duration,
		"workers", workers, "policy", cfg.Policy.String())

	dt := cfg.Dt
	t := 0.0
	r.record(result, bodies, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if !anyActive(bodies) {
			break
		}

		faults := make([][]*Fault, workers)
		var g errgroup.Group
		g.SetLimit(workers)
		for w := 0; w < workers; w++ {
			start := w * chunkSize
			end := start + chunkSize
			if end > len(bodies) {
				end = len(bodies)
			}
			if start >= end {
				continue
			}

			g.Go(func() error {
				integ := r.integs.Get().(Integrator)
				defer r.integs.Put(integ)

				for _, b := range bodies[start:end] {
					if f := r.stepBody(integ, b, i, t, dt, cfg); f != nil {
						faults[w] = append(faults[w], f)
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return result, err
		}

		for _, fs := range faults {
			for _, f := range fs {
				r.logFault(f)
				result.Faults = append(result.Faults, f)
			}
		}
		for _, b := range bodies {
			if b.hasLast && b.last.Burst && b.BurstTime == t {
				r.lg.Info("envelope burst", "body", b.ID, "name", b.Name, "altitude", b.BurstAltitude,
					"time", t, "cause", b.Envelope.Cause.String())
			}
		}

		t = float64(i+1) * dt
		result.StepsTaken++

		if (i+1)%sampleEvery == 0 || i == steps-1 || !anyActive(bodies) {
			r.record(result, bodies, t)
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	r.lg.Info("flight finished", "steps", result.StepsTaken, "time", t, "faults", len(result.Faults))
	return result, nil
}

func (r *Runner) record(result *Result, bodies []*Body, t float64) {
	samples := make([]Sample, len(bodies))
	for i, b := range bodies {
		s := b.sample(t)
		samples[i] = s
		result.Tracks[i] = append(result.Tracks[i], s)
		for _, m := range r.metrics {
			m.Observe(s)
		}
	}
	result.Times = append(result.Times, t)
	for _, o := range r.observers {
		o.OnTick(t, samples)
	}
}

// stepBody advances one body by one tick. It returns a fault only when the
// body starts failing; a repeat of the body's open fault extends it instead.
func (r *Runner) stepBody(integ Integrator, b *Body, step int, t, dt float64, cfg Config) *Fault {
	if !b.Active() {
		return nil
	}
	f := r.tick(integ, b, step, t, dt, cfg)
	switch {
	case f == nil:
		b.openFault = nil
		return nil
	case f.continues(b.openFault):
		b.openFault.Ticks++
		return nil
	}
	f.Ticks = 1
	b.openFault = f
	return f
}

// tick evaluates and integrates one body, reporting a fault if the core
// could not evaluate it.
func (r *Runner) tick(integ Integrator, b *Body, step int, t, dt float64, cfg Config) *Fault {

	snap := balloon.Snapshot{
		Altitude: units.Meters(b.State.Altitude()),
		Velocity: b.State.Velocity(),
		Shape:    b.Shape,
		Drag:     b.Drag,
		Envelope: b.Envelope,
	}

	var fault *Fault
	out, err := balloon.Tick(r.atm, snap)
	if err != nil {
		fault = &Fault{Body: b.ID, Step: step, Time: t, Err: err}
		switch {
		case errors.Is(err, atmosphere.ErrNumeric):
			fault.Action = "flagged"
			b.Status = Faulted
			return fault
		case cfg.Policy == Skip:
			fault.Action = "skipped"
			return fault
		case cfg.Policy == Clamp && errors.Is(err, atmosphere.ErrAltitudeOutOfBounds):
			snap.Altitude = clampAltitude(snap.Altitude)
			out, err = balloon.Tick(r.atm, snap)
			if err != nil {
				fault.Err = err
				fault.Action = "flagged"
				b.Status = Faulted
				return fault
			}
			fault.Action = "clamped"
		default:
			fault.Action = "flagged"
			b.Status = Faulted
			return fault
		}
	}

	if m := out.Envelope.TotalMass(); m <= 0 {
		b.Status = Faulted
		return &Fault{Body: b.ID, Step: step, Time: t, Action: "flagged",
			Err: fmt.Errorf("%w: total mass %v", ErrInvalidState, m)}
	}

	next := integ.Step(newTickDynamics(out), b.State, t, dt)
	if !next.IsValid() {
		b.Status = Faulted
		return &Fault{Body: b.ID, Step: step, Time: t, Action: "flagged",
			Err: fmt.Errorf("%w: NaN/Inf after integration", ErrInvalidState)}
	}

	if next[1] <= cfg.GroundLevel && next[4] < 0 {
		next[1] = cfg.GroundLevel
		next[3], next[4], next[5] = 0, 0, 0
		b.Status = Landed
	}

	b.State = next
	b.Envelope = out.Envelope
	b.last = out
	b.hasLast = true
	if out.Burst {
		b.BurstTime = t
		b.BurstAltitude = snap.Altitude.Meters()
	}
	return fault
}

func (r *Runner) logFault(f *Fault) {
	if errors.Is(f.Err, atmosphere.ErrNumeric) || errors.Is(f.Err, ErrInvalidState) {
		r.lg.Error("body fault", "body", f.Body, "step", f.Step, "time", f.Time, "action", f.Action, "error", f.Err)
		return
	}
	r.lg.Warn("body fault", "body", f.Body, "step", f.Step, "time", f.Time, "action", f.Action, "error", f.Err)
}

func clampAltitude(h units.Length) units.Length {
	return units.Meters(math.Max(atmosphere.MinAltitude, math.Min(atmosphere.MaxAltitude, h.Meters())))
}

func anyActive(bodies []*Body) bool {
	for _, b := range bodies {
		if b.Active() {
			return true
		}
	}
	return false
}

func validateConfig(cfg Config, bodies []*Body) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if len(bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidConfig)
	}
	limit := cfg.MaxBodies
	if limit <= 0 {
		limit = DefaultMaxBodies
	}
	if len(bodies) > limit {
		return fmt.Errorf("%w: %d bodies exceed the per-tick budget of %d", ErrTooManyBodies, len(bodies), limit)
	}
	for _, b := range bodies {
		if len(b.State) != StateDim {
			return fmt.Errorf("%w: body %d has %d state components", ErrInvalidState, b.ID, len(b.State))
		}
	}
	return nil
}
