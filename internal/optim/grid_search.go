// Package optim searches balloon parameters for a flight objective, such as
// the fill that gives a target ascent rate.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/buoy/internal/config"
	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/log"
	"github.com/san-kum/buoy/internal/metrics"
)

var (
	ErrUnknownParam = errors.New("optim: unknown parameter")
	ErrNoTrials     = errors.New("optim: no successful trials")
)

// Params are the balloon fields a search may vary.
var Params = map[string]func(b *config.BalloonConfig, v float64){
	"fill_volume":    func(b *config.BalloonConfig, v float64) { b.FillVolume, b.GasMass = v, 0 },
	"gas_mass":       func(b *config.BalloonConfig, v float64) { b.GasMass = v },
	"payload_mass":   func(b *config.BalloonConfig, v float64) { b.PayloadMass = v },
	"envelope_mass":  func(b *config.BalloonConfig, v float64) { b.EnvelopeMass = v },
	"max_volume":     func(b *config.BalloonConfig, v float64) { b.MaxVolume = v },
	"burst_altitude": func(b *config.BalloonConfig, v float64) { b.BurstAltitude = v },
}

// Objective scores a finished flight; lower is better.
type Objective func(res *flight.Result) (float64, error)

// TargetAscentRate scores the distance of the first body's mean ascent rate
// from target.
func TargetAscentRate(target float64) Objective {
	return func(res *flight.Result) (float64, error) {
		if len(res.Tracks) == 0 {
			return 0, metrics.ErrEmptyTrack
		}
		sum, err := metrics.Summarize(res.Tracks[0])
		if err != nil {
			return 0, err
		}
		return math.Abs(sum.MeanAscentRate - target), nil
	}
}

// MaximizeAltitude prefers the highest max_altitude metric.
func MaximizeAltitude(res *flight.Result) (float64, error) {
	h, ok := res.Metrics["max_altitude"]
	if !ok {
		return 0, fmt.Errorf("optim: max_altitude not recorded")
	}
	return -h, nil
}

type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	lg         *log.Logger
}

func NewGridSearch(params []string, ranges [][]float64, lg *log.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for _, p := range params {
		if _, ok := Params[p]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, lg: lg}, nil
}

// Search flies base once per grid point with the point applied to every
// balloon and returns the best trial along with all of them. Failed trials
// are kept with their error.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (Trial, []Trial, error) {
	var trials []Trial
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		t := Trial{Params: params}
		t.Score, t.Err = g.evaluate(ctx, base, params, objective)
		if t.Err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.lg.Warn("trial failed", "params", params, "error", t.Err)
		}
		trials = append(trials, t)
		return nil
	})
	if err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Score: math.Inf(1)}
	found := false
	for _, t := range trials {
		if t.Err == nil && t.Score < best.Score {
			best, found = t, true
		}
	}
	if !found {
		return Trial{}, trials, ErrNoTrials
	}
	g.lg.Info("search finished", "trials", len(trials), "best", best.Params, "score", best.Score)
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, objective Objective) (float64, error) {
	cfg := Apply(base, params)
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	bodies, err := cfg.Bodies()
	if err != nil {
		return 0, err
	}
	fc, err := cfg.Flight()
	if err != nil {
		return 0, err
	}
	runner, err := cfg.Runner(g.lg)
	if err != nil {
		return 0, err
	}
	runner.AddMetric(metrics.NewMaxAltitude())

	res, err := runner.Run(ctx, bodies, fc)
	if err != nil {
		return 0, err
	}
	return objective(res)
}

// Apply returns a copy of base with params set on every balloon.
func Apply(base *config.Config, params map[string]float64) *config.Config {
	cfg := *base
	cfg.Balloons = append([]config.BalloonConfig(nil), base.Balloons...)
	for name, v := range params {
		set := Params[name]
		for i := range cfg.Balloons {
			set(&cfg.Balloons[i], v)
		}
	}
	return &cfg
}

// ParseRange reads "start:stop:step" (inclusive) or a single value.
func ParseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("optim: range %q: %w", s, err)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return vals, nil
	case 3:
		start, stop, step := vals[0], vals[1], vals[2]
		if step <= 0 || stop < start {
			return nil, fmt.Errorf("optim: range %q: need start <= stop and step > 0", s)
		}
		n := int(math.Floor((stop-start)/step+1e-9)) + 1
		out := make([]float64, n)
		for i := range out {
			out[i] = start + float64(i)*step
		}
		return out, nil
	}
	return nil, fmt.Errorf("optim: range %q: want start:stop:step", s)
}

// ParseParam splits "name=range".
func ParseParam(s string) (string, []float64, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("optim: param %q: want name=start:stop:step", s)
	}
	name = strings.TrimSpace(name)
	if _, ok := Params[name]; !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	vals, err := ParseRange(rng)
	return name, vals, err
}
