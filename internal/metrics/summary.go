package metrics

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"

	"github.com/san-kum/buoy/internal/flight"
)

var ErrEmptyTrack = errors.New("metrics: empty track")

// Summary condenses one body's track.
type Summary struct {
	Body    int `json:"body"`
	Samples int `json:"samples"`

	Duration    float64 `json:"duration"`
	MaxAltitude float64 `json:"max_altitude"`
	MaxVolume   float64 `json:"max_volume"`

	MeanAscentRate float64 `json:"mean_ascent_rate"`
	P95AscentRate  float64 `json:"p95_ascent_rate"`
	AscentRateStd  float64 `json:"ascent_rate_std"`
	MaxDescentRate float64 `json:"max_descent_rate"`

	Burst         bool    `json:"burst"`
	BurstTime     float64 `json:"burst_time,omitempty"`
	BurstAltitude float64 `json:"burst_altitude,omitempty"`

	Landed      bool    `json:"landed"`
	LandingTime float64 `json:"landing_time,omitempty"`

	// Drift is the horizontal distance between launch and the last sample.
	Drift  float64       `json:"drift"`
	Status flight.Status `json:"status"`
}

func Summarize(track []flight.Sample) (Summary, error) {
	if len(track) == 0 {
		return Summary{}, ErrEmptyTrack
	}

	first, last := track[0], track[len(track)-1]
	sum := Summary{
		Body:     first.Body,
		Samples:  len(track),
		Duration: last.Time - first.Time,
		Status:   last.Status,
	}

	var altitudes, volumes, ascent, descent stats.Float64Data
	for _, s := range track {
		altitudes = append(altitudes, s.Altitude())
		volumes = append(volumes, s.Volume)
		if s.Status != flight.Active {
			continue
		}
		if !s.Burst && s.Velocity.Y > 0 {
			ascent = append(ascent, s.Velocity.Y)
		}
		if s.Velocity.Y < 0 {
			descent = append(descent, -s.Velocity.Y)
		}
	}

	var err error
	if sum.MaxAltitude, err = stats.Max(altitudes); err != nil {
		return sum, err
	}
	if sum.MaxVolume, err = stats.Max(volumes); err != nil {
		return sum, err
	}
	if len(ascent) > 0 {
		sum.MeanAscentRate, _ = stats.Mean(ascent)
		// Percentile rejects tracks too short to rank.
		if sum.P95AscentRate, err = stats.Percentile(ascent, 95); err != nil {
			sum.P95AscentRate, _ = stats.Max(ascent)
		}
		sum.AscentRateStd, _ = stats.StandardDeviation(ascent)
	}
	if len(descent) > 0 {
		sum.MaxDescentRate, _ = stats.Max(descent)
	}

	for _, s := range track {
		if s.Burst && !sum.Burst {
			sum.Burst = true
			sum.BurstTime = s.Time
			sum.BurstAltitude = s.Altitude()
		}
		if s.Status == flight.Landed && !sum.Landed {
			sum.Landed = true
			sum.LandingTime = s.Time
		}
	}

	sum.Drift = horizontal(last.Position.Sub(first.Position))
	return sum, nil
}

// SummarizeAll summarizes every track of a result, skipping empty ones.
func SummarizeAll(res *flight.Result) []Summary {
	out := make([]Summary, 0, len(res.Tracks))
	for _, track := range res.Tracks {
		if s, err := Summarize(track); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// Column extracts one field from a track, for plotting.
func Column(track []flight.Sample, field func(flight.Sample) float64) []float64 {
	out := make([]float64, len(track))
	for i, s := range track {
		out[i] = field(s)
	}
	return out
}

func horizontal(v r3.Vector) float64 {
	return math.Hypot(v.X, v.Z)
}
