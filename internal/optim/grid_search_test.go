package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/buoy/internal/config"
	"github.com/san-kum/buoy/internal/log"
)

func shortFlight(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.GetPreset("sounding")
	if cfg == nil {
		t.Fatal("missing sounding preset")
	}
	cfg.Duration = 60
	return cfg
}

func TestGridSearchTargetAscentRate(t *testing.T) {
	gs, err := NewGridSearch([]string{"fill_volume"}, [][]float64{{0, 6, 12, 30}}, log.Discard())
	if err != nil {
		t.Fatal(err)
	}

	best, trials, err := gs.Search(context.Background(), shortFlight(t), TargetAscentRate(7))
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(trials))
	}
	if trials[0].Err == nil {
		t.Error("a zero fill should fail validation")
	}
	if best.Params["fill_volume"] != 12 {
		t.Errorf("expected fill 12, got %v (score %v)", best.Params, best.Score)
	}
}

func TestGridSearchMaximizeAltitude(t *testing.T) {
	gs, err := NewGridSearch(
		[]string{"fill_volume", "payload_mass"},
		[][]float64{{8, 16}, {1, 3}},
		log.Discard(),
	)
	if err != nil {
		t.Fatal(err)
	}

	best, trials, err := gs.Search(context.Background(), shortFlight(t), MaximizeAltitude)
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(trials))
	}
	if best.Params["fill_volume"] != 16 || best.Params["payload_mass"] != 1 {
		t.Errorf("expected the largest fill and lightest payload, got %v", best.Params)
	}
	if best.Score >= 0 {
		t.Errorf("expected a negative altitude score, got %v", best.Score)
	}
}

func TestGridSearchNoTrials(t *testing.T) {
	gs, err := NewGridSearch([]string{"max_volume"}, [][]float64{{0, -1}}, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	_, trials, err := gs.Search(context.Background(), shortFlight(t), MaximizeAltitude)
	if !errors.Is(err, ErrNoTrials) {
		t.Errorf("expected ErrNoTrials, got %v", err)
	}
	if len(trials) != 2 {
		t.Errorf("expected 2 failed trials, got %d", len(trials))
	}
}

func TestGridSearchCancelled(t *testing.T) {
	gs, err := NewGridSearch([]string{"fill_volume"}, [][]float64{{10, 12}}, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := gs.Search(ctx, shortFlight(t), MaximizeAltitude); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"colour"}, [][]float64{{1}}, nil); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := NewGridSearch([]string{"fill_volume"}, nil, nil); err == nil {
		t.Error("expected an error for mismatched ranges")
	}
}

func TestApplyCopies(t *testing.T) {
	base := shortFlight(t)
	cfg := Apply(base, map[string]float64{"payload_mass": 9, "fill_volume": 20})
	if cfg.Balloons[0].PayloadMass != 9 || cfg.Balloons[0].FillVolume != 20 {
		t.Errorf("params not applied: %+v", cfg.Balloons[0])
	}
	if base.Balloons[0].PayloadMass == 9 {
		t.Error("base config was modified")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
		err  bool
	}{
		{"5", []float64{5}, false},
		{"1:2:0.5", []float64{1, 1.5, 2}, false},
		{"0:1:0.3", []float64{0, 0.3, 0.6, 0.8999999999999999}, false},
		{"2:1:1", nil, true},
		{"1:2:0", nil, true},
		{"1:2", nil, true},
		{"a:b:c", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("%q: err = %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if d := got[i] - tt.want[i]; d > 1e-12 || d < -1e-12 {
				t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestParseParam(t *testing.T) {
	name, vals, err := ParseParam("fill_volume=8:12:2")
	if err != nil {
		t.Fatal(err)
	}
	if name != "fill_volume" || len(vals) != 3 {
		t.Errorf("got %s %v", name, vals)
	}
	if _, _, err := ParseParam("fill_volume"); err == nil {
		t.Error("expected error without '='")
	}
	if _, _, err := ParseParam("hue=1"); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}
