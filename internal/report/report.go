// Package report renders atmosphere tables, flight summaries and plots for
// the terminal.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/gas"
	"github.com/san-kum/buoy/internal/metrics"
	"github.com/san-kum/buoy/internal/storage"
	"github.com/san-kum/buoy/internal/units"
)

const (
	PlotHeight = 12
	PlotWidth  = 80
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		}).
		Headers(headers...)
}

// Pressure formats a pressure with an SI prefix, e.g. "2.5 kPa".
func Pressure(pa float64) string {
	return humanize.SIWithDigits(pa, 2, "Pa")
}

func Meters(m float64) string {
	return humanize.CommafWithDigits(m, 1) + " m"
}

func Seconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(time.Second).String()
}

// Atmosphere tabulates the model from..to inclusive. Altitudes outside the
// domain are reported as errors rather than skipped.
func Atmosphere(atm atmosphere.StandardAtmosphere1976, from, to, step float64) (string, error) {
	if step <= 0 || to < from {
		return "", fmt.Errorf("report: invalid range %g..%g step %g", from, to, step)
	}

	t := newTable("ALTITUDE", "BAND", "TEMP", "PRESSURE", "DENSITY", "SOUND")
	n := int(math.Floor((to-from)/step + 1e-9))
	for i := 0; i <= n; i++ {
		h := units.Meters(from + float64(i)*step)
		s, err := atm.State(h)
		if err != nil {
			return "", err
		}
		band, err := atm.Band(h)
		if err != nil {
			return "", err
		}
		c, err := atm.SpeedOfSound(h)
		if err != nil {
			return "", err
		}
		t.Row(
			Meters(h.Meters()),
			band,
			fmt.Sprintf("%.2f °C", s.Temperature.Celsius()),
			Pressure(s.Pressure.Pascals()),
			fmt.Sprintf("%.5f kg/m³", s.Density.KilogramsPerCubicMeter()),
			fmt.Sprintf("%.1f m/s", c.MetersPerSecond()),
		)
	}
	return t.String(), nil
}

// Gases tabulates species with their sea-level properties.
func Gases(species []gas.Species) string {
	t := newTable("NAME", "SYMBOL", "MOLAR MASS", "GAMMA", "DENSITY @STP", "SOUND @15°C")
	for _, s := range species {
		rho, err := gas.Density(units.StandardTemperature, units.StandardPressure, s)
		c, cerr := gas.SpeedOfSound(units.SeaLevelTemperature, s)
		row := []string{
			s.Name,
			s.Abbreviation,
			fmt.Sprintf("%.4f g/mol", s.MolarMass.KilogramsPerMole()*1000),
			fmt.Sprintf("%.2f", s.Gamma()),
			"-",
			"-",
		}
		if err == nil {
			row[4] = fmt.Sprintf("%.4f kg/m³", rho.KilogramsPerCubicMeter())
		}
		if cerr == nil {
			row[5] = fmt.Sprintf("%.1f m/s", c.MetersPerSecond())
		}
		t.Row(row...)
	}
	return t.String()
}

// Summaries tabulates per-body flight figures. names maps body IDs to
// display names and may be nil.
func Summaries(sums []metrics.Summary, names map[int]string) string {
	t := newTable("BODY", "STATUS", "MAX ALT", "ASCENT", "P95 ASCENT", "MAX DESCENT", "BURST", "LANDED", "DRIFT")
	for _, s := range sums {
		name := names[s.Body]
		if name == "" {
			name = fmt.Sprintf("#%d", s.Body)
		}
		burst := "-"
		if s.Burst {
			burst = fmt.Sprintf("%s @ %s", Meters(s.BurstAltitude), Seconds(s.BurstTime))
		}
		landed := "-"
		if s.Landed {
			landed = Seconds(s.LandingTime)
		}
		t.Row(
			name,
			StatusStyle(s.Status.String()).Render(s.Status.String()),
			Meters(s.MaxAltitude),
			fmt.Sprintf("%.2f m/s", s.MeanAscentRate),
			fmt.Sprintf("%.2f m/s", s.P95AscentRate),
			fmt.Sprintf("%.2f m/s", s.MaxDescentRate),
			burst,
			landed,
			Meters(s.Drift),
		)
	}
	return t.String()
}

// Metrics lists scalar metrics by name. NaN means the metric never fired.
func Metrics(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		v := m[name]
		val := "-"
		if !math.IsNaN(v) {
			val = humanize.CommafWithDigits(v, 3)
		}
		fmt.Fprintf(&b, "  %s %s\n", Label.Render(name+":"), Value.Render(val))
	}
	return b.String()
}

func Faults(faults []*flight.Fault, limit int) string {
	if len(faults) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", Warn.Render(fmt.Sprintf("%s faults", humanize.Comma(int64(len(faults))))))
	for i, f := range faults {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "  %s\n", Subtle.Render(fmt.Sprintf("... and %d more", len(faults)-limit)))
			break
		}
		fmt.Fprintf(&b, "  %s\n", f.Error())
	}
	return b.String()
}

// Runs lists recorded runs, newest last, with ages relative to now.
func Runs(runs []storage.RunMetadata, now time.Time) string {
	t := newTable("ID", "PRESET", "RECORDED", "DURATION", "DT", "INTEG", "POLICY", "BODIES", "STEPS")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.Preset,
			humanize.RelTime(r.Timestamp, now, "ago", "from now"),
			Seconds(r.Duration),
			fmt.Sprintf("%gs", r.Dt),
			r.Integrator,
			r.Policy,
			fmt.Sprint(len(r.Bodies)),
			humanize.Comma(int64(r.Steps)),
		)
	}
	return t.String()
}

// Plot draws one field of a track against sample index, downsampled to the
// plot width.
func Plot(track []flight.Sample, field func(flight.Sample) float64, caption string) string {
	data := downsample(metrics.Column(track, field), PlotWidth)
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(PlotHeight),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	)
}

// Plots renders the standard altitude, vertical rate and volume plots.
func Plots(track []flight.Sample) string {
	if len(track) == 0 {
		return ""
	}
	name := fmt.Sprintf("body %d", track[0].Body)
	plots := []string{
		Plot(track, flight.Sample.Altitude, name+": altitude (m)"),
		Plot(track, func(s flight.Sample) float64 { return s.Velocity.Y }, name+": vertical rate (m/s)"),
		Plot(track, func(s flight.Sample) float64 { return s.Volume }, name+": envelope volume (m³)"),
	}
	return strings.Join(plots, "\n\n")
}

func downsample(data []float64, width int) []float64 {
	if len(data) <= width || width <= 0 {
		return data
	}
	out := make([]float64, width)
	stride := float64(len(data)-1) / float64(width-1)
	for i := range out {
		out[i] = data[int(math.Round(float64(i)*stride))]
	}
	return out
}
