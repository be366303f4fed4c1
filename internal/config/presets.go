package config

import (
	"sort"

	"github.com/san-kum/buoy/internal/forces"
)

var Presets = map[string]*Config{
	"sounding": {
		Name: "sounding", Integrator: "rk4", Dt: 0.1, Duration: 3 * 3600, Workers: 1, SampleEvery: 10, Policy: "skip",
		Balloons: []BalloonConfig{{
			Name: "sonde", LiftGas: "helium", MaxVolume: 1000, EnvelopeMass: 2, PayloadMass: 1.5,
			FillVolume: 12, BurstAltitude: 30000,
		}},
	},
	"hydrogen": {
		Name: "hydrogen", Integrator: "rk4", Dt: 0.1, Duration: 3 * 3600, Workers: 1, SampleEvery: 10, Policy: "skip",
		Balloons: []BalloonConfig{{
			Name: "sonde", LiftGas: "hydrogen", MaxVolume: 1000, EnvelopeMass: 2, PayloadMass: 1.5,
			FillVolume: 10, BurstAltitude: 32000,
		}},
	},
	"overfill": {
		Name: "overfill", Integrator: "rk4", Dt: 0.1, Duration: 2 * 3600, Workers: 1, SampleEvery: 10, Policy: "clamp",
		Balloons: []BalloonConfig{{
			Name: "party", LiftGas: "helium", MaxVolume: 40, EnvelopeMass: 0.5, PayloadMass: 0.2,
			FillVolume: 4, BurstAltitude: 40000,
		}},
	},
	"cargo": {
		Name: "cargo", Integrator: "rk45", Dt: 0.5, Duration: 3 * 3600, Workers: 1, SampleEvery: 4, Policy: "clamp",
		Balloons: []BalloonConfig{{
			Name: "cargo", LiftGas: "helium", MaxVolume: 5000, EnvelopeMass: 8, PayloadMass: 20,
			FillVolume: 60, BurstAltitude: 28000,
			Shape: ShapeConfig{Kind: "cylinder", Radius: 2.5, Height: 6},
			Drag:  &forces.DragModel{Base: 0.8, ReynoldsScaling: 0.25},
		}},
	},
	"fleet": {
		Name: "fleet", Integrator: "rk4", Dt: 0.1, Duration: 3 * 3600, Workers: 4, SampleEvery: 20, Policy: "skip",
		Balloons: []BalloonConfig{
			{
				Name: "light", Count: 4, LiftGas: "helium", MaxVolume: 800, EnvelopeMass: 1.2, PayloadMass: 0.5,
				FillVolume: 6, BurstAltitude: 27000, Spacing: 25,
			},
			{
				Name: "heavy", Count: 4, LiftGas: "helium", MaxVolume: 1200, EnvelopeMass: 3, PayloadMass: 3,
				FillVolume: 16, BurstAltitude: 33000, Spacing: 25,
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Balloons = append([]BalloonConfig(nil), p.Balloons...)
	for i, b := range cfg.Balloons {
		if b.Drag != nil {
			d := *b.Drag
			cfg.Balloons[i].Drag = &d
		}
	}
	cfg.Gases = append([]GasConfig(nil), p.Gases...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
