package gas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/buoy/internal/units"
)

func TestVolume(t *testing.T) {
	v, err := Volume(units.Kelvin(293), units.StandardPressure, units.Kilograms(1), Helium())
	require.NoError(t, err)

	want := (1 / 0.0040026) * 8.314 * 293 / 101325
	assert.InDelta(t, want, v.CubicMeters(), 1e-9)
	assert.InDelta(t, 6.0065, v.CubicMeters(), 1e-3)
}

func TestVolumeScalesWithMass(t *testing.T) {
	v1, err := Volume(units.Kelvin(250), units.Kilopascals(50), units.Kilograms(1), Helium())
	require.NoError(t, err)
	v3, err := Volume(units.Kelvin(250), units.Kilopascals(50), units.Kilograms(3), Helium())
	require.NoError(t, err)
	assert.InDelta(t, 3*v1.CubicMeters(), v3.CubicMeters(), 1e-9)

	v0, err := Volume(units.Kelvin(250), units.Kilopascals(50), 0, Helium())
	require.NoError(t, err)
	assert.Zero(t, v0.CubicMeters())
}

func TestDensity(t *testing.T) {
	rho, err := Density(units.StandardTemperature, units.StandardPressure, Air())
	require.NoError(t, err)
	assert.InDelta(t, 1.2924, rho.KilogramsPerCubicMeter(), 1e-3)

	he, err := Density(units.StandardTemperature, units.StandardPressure, Helium())
	require.NoError(t, err)
	assert.Less(t, he.KilogramsPerCubicMeter(), rho.KilogramsPerCubicMeter())
	assert.InDelta(t, 0.1786, he.KilogramsPerCubicMeter(), 1e-3)
}

func TestInverseLaws(t *testing.T) {
	temp := units.Kelvin(240)
	p := units.Kilopascals(30)

	rho, err := Density(temp, p, Air())
	require.NoError(t, err)

	gotP, err := Pressure(temp, rho, Air())
	require.NoError(t, err)
	assert.InDelta(t, p.Pascals(), gotP.Pascals(), 1e-6)

	gotT, err := Temperature(p, rho, Air())
	require.NoError(t, err)
	assert.InDelta(t, temp.Kelvin(), gotT.Kelvin(), 1e-9)
}

func TestSpeedOfSound(t *testing.T) {
	a, err := SpeedOfSound(units.SeaLevelTemperature, Air())
	require.NoError(t, err)
	assert.InDelta(t, 340.3, a.MetersPerSecond(), 0.5)

	he, err := SpeedOfSound(units.SeaLevelTemperature, Helium())
	require.NoError(t, err)
	assert.Greater(t, he.MetersPerSecond(), a.MetersPerSecond())
}

func TestInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		temp  units.Temperature
		press units.Pressure
		mass  units.Mass
		param string
	}{
		{"zero temperature", 0, units.StandardPressure, 1, "temperature"},
		{"negative temperature", -10, units.StandardPressure, 1, "temperature"},
		{"zero pressure", units.StandardTemperature, 0, 1, "pressure"},
		{"negative pressure", units.StandardTemperature, -1, 1, "pressure"},
		{"nan temperature", units.Temperature(math.NaN()), units.StandardPressure, 1, "temperature"},
		{"inf pressure", units.StandardTemperature, units.Pressure(math.Inf(1)), 1, "pressure"},
		{"negative mass", units.StandardTemperature, units.StandardPressure, -1, "mass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Volume(tt.temp, tt.press, tt.mass, Helium())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var inv *InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.param, inv.Param)
		})
	}

	_, err := Density(units.StandardTemperature, 0, Air())
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = Density(units.StandardTemperature, units.StandardPressure, Species{Name: "void"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"air", "Air"},
		{"Helium", "Helium"},
		{"HE", "Helium"},
		{" h2 ", "Hydrogen"},
	}
	for _, tt := range tests {
		s, err := Lookup(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, s.Name)
	}

	_, err := Lookup("argon")
	assert.ErrorIs(t, err, ErrUnknownSpecies)
	var unk *UnknownSpeciesError
	require.ErrorAs(t, err, &unk)
	assert.Equal(t, "argon", unk.Name)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"Air", "Helium", "Hydrogen"}, r.Names())

	argon := Species{Name: "Argon", Abbreviation: "Ar", MolarMass: 0.039948, SpecificHeatRatio: 1.67}
	require.NoError(t, r.Register(argon))

	got, err := r.Lookup("ar")
	require.NoError(t, err)
	assert.Equal(t, argon, got)
	assert.Len(t, r.List(), 4)

	err = r.Register(Species{Name: "Bad", MolarMass: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// the package table is unaffected
	_, err = Lookup("argon")
	assert.ErrorIs(t, err, ErrUnknownSpecies)
}

func TestState(t *testing.T) {
	g := NewState(Helium(), units.Kelvin(293), units.StandardPressure, units.Kilograms(1))
	v, err := g.Volume()
	require.NoError(t, err)

	cold := g.AtAmbient(units.Kelvin(220), units.Kilopascals(5))
	vc, err := cold.Volume()
	require.NoError(t, err)
	assert.Greater(t, vc.CubicMeters(), v.CubicMeters())
	assert.Equal(t, units.Kelvin(293), g.Temperature, "AtAmbient must not mutate the receiver")

	heavy := g.WithMass(2)
	vh, err := heavy.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 2*v.CubicMeters(), vh.CubicMeters(), 1e-9)

	rho, err := g.Density()
	require.NoError(t, err)
	assert.InDelta(t, 1/v.CubicMeters(), rho.KilogramsPerCubicMeter(), 1e-9)
}
