package balloon_test

import (
	"math"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/balloon"
	"github.com/san-kum/buoy/internal/forces"
	"github.com/san-kum/buoy/internal/gas"
	"github.com/san-kum/buoy/internal/geometry"
	"github.com/san-kum/buoy/internal/log"
	"github.com/san-kum/buoy/internal/units"
)

type fixedAtmosphere struct {
	state atmosphere.State
}

func (f fixedAtmosphere) State(h units.Length) (atmosphere.State, error) {
	s := f.state
	s.Altitude = h
	return s, nil
}

var _ = Describe("Envelope", func() {
	var atm atmosphere.StandardAtmosphere1976

	BeforeEach(func() {
		atm = atmosphere.StandardAtmosphere1976{Log: log.Discard()}
	})

	Describe("New", func() {
		It("fills to the requested volume at the fill state", func() {
			env, err := balloon.New(balloon.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(env.CurrentVolume.CubicMeters()).To(BeNumerically("~", 12, 1e-9))
			Expect(env.Radius).To(Equal(geometry.SphereRadiusFromVolume(env.CurrentVolume)))
			Expect(env.Burst).To(BeFalse())
			Expect(env.Cause).To(Equal(balloon.Intact))
		})

		It("prefers an explicit gas mass over a fill volume", func() {
			cfg := balloon.DefaultConfig()
			cfg.GasMass = units.Kilograms(3)
			env, err := balloon.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.LiftGas.Mass).To(Equal(units.Kilograms(3)))
		})

		DescribeTable("rejects invalid configs",
			func(mutate func(*balloon.Config), field string) {
				cfg := balloon.DefaultConfig()
				mutate(&cfg)
				_, err := balloon.New(cfg)
				Expect(err).To(MatchError(balloon.ErrInvalidConfig))
				var ce *balloon.ConfigError
				Expect(err).To(BeAssignableToTypeOf(ce))
				Expect(err.(*balloon.ConfigError).Field).To(Equal(field))
			},
			Entry("zero max volume", func(c *balloon.Config) { c.MaxVolume = 0 }, "max_volume"),
			Entry("negative payload", func(c *balloon.Config) { c.PayloadMass = -1 }, "payload_mass"),
			Entry("negative gas mass", func(c *balloon.Config) { c.GasMass = -1 }, "gas_mass"),
			Entry("no fill", func(c *balloon.Config) { c.FillVolume = 0 }, "fill"),
			Entry("nan burst altitude", func(c *balloon.Config) { c.BurstAltitude = units.Length(math.NaN()) }, "burst_altitude"),
			Entry("bad lift gas", func(c *balloon.Config) { c.LiftGas = gas.Species{Name: "void"} }, "lift_gas"),
		)
	})

	Describe("Tick", func() {
		It("ascends with a 1000 m³ helium fill at sea level", func() {
			cfg := balloon.Config{
				MaxVolume:     units.CubicMeters(2000),
				EnvelopeMass:  units.Kilograms(1),
				PayloadMass:   units.Kilograms(1.5),
				LiftGas:       gas.Helium(),
				FillVolume:    units.CubicMeters(1000),
				BurstAltitude: units.Meters(30000),
			}
			env, err := balloon.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			out, err := balloon.Tick(atm, balloon.Snapshot{
				Altitude: 0,
				Drag:     forces.ConstantDrag(0.47),
				Envelope: *env,
			})
			Expect(err).NotTo(HaveOccurred())

			lift := out.Ambient.Density.KilogramsPerCubicMeter() * out.Envelope.CurrentVolume.CubicMeters() * out.Forces.Gravity.MetersPerSecondSquared()
			weight := out.Envelope.TotalMass().Kilograms() * out.Forces.Gravity.MetersPerSecondSquared()
			Expect(lift).To(BeNumerically(">", weight))
			Expect(out.Forces.Net.Y).To(BeNumerically(">", 0))
			Expect(out.Forces.Drag).To(Equal(r3.Vector{}))
			Expect(out.Burst).To(BeFalse())
		})

		It("bursts above the burst altitude and never recovers", func() {
			cfg := balloon.DefaultConfig()
			cfg.MaxVolume = units.CubicMeters(1e6)
			env, err := balloon.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			snap := balloon.Snapshot{Altitude: units.Meters(30001), Velocity: r3.Vector{Y: 5}, Envelope: *env}
			out, err := balloon.Tick(atm, snap)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Burst).To(BeTrue())
			Expect(out.Envelope.Burst).To(BeTrue())
			Expect(out.Envelope.Cause).To(Equal(balloon.BurstAltitudeExceeded))
			Expect(snap.Envelope.Burst).To(BeFalse(), "the snapshot must not change")

			for _, h := range []float64{29000, 10000, 0} {
				out, err = balloon.Tick(atm, balloon.Snapshot{Altitude: units.Meters(h), Velocity: r3.Vector{Y: -20}, Envelope: out.Envelope})
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Envelope.Burst).To(BeTrue())
				Expect(out.Burst).To(BeFalse())
				Expect(out.Envelope.DisplacedVolume()).To(BeZero())
				Expect(out.Forces.Buoyancy.Y).To(BeZero())
				Expect(out.Forces.Net.Y).To(BeNumerically("<", 0))
			}
		})

		It("bursts when the gas outgrows the envelope", func() {
			cfg := balloon.DefaultConfig()
			cfg.MaxVolume = units.CubicMeters(20)
			env, err := balloon.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			out, err := balloon.Tick(atm, balloon.Snapshot{Altitude: units.Meters(10000), Envelope: *env})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Envelope.CurrentVolume.CubicMeters()).To(BeNumerically(">", 20))
			Expect(out.Envelope.Cause).To(Equal(balloon.BurstOverexpanded))
		})

		It("expands the gas with altitude", func() {
			env, err := balloon.New(balloon.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			low, err := balloon.Tick(atm, balloon.Snapshot{Altitude: 0, Envelope: *env})
			Expect(err).NotTo(HaveOccurred())
			high, err := balloon.Tick(atm, balloon.Snapshot{Altitude: units.Meters(20000), Envelope: low.Envelope})
			Expect(err).NotTo(HaveOccurred())
			Expect(high.Envelope.CurrentVolume).To(BeNumerically(">", low.Envelope.CurrentVolume))
			Expect(high.Envelope.Radius).To(BeNumerically(">", low.Envelope.Radius))
			Expect(high.Envelope.LiftGas.Mass).To(Equal(low.Envelope.LiftGas.Mass))
		})

		It("uses the collider shape for the drag area", func() {
			env, err := balloon.New(balloon.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			box := geometry.Cuboid{HalfExtents: r3.Vector{X: 1, Y: 2, Z: 3}}

			out, err := balloon.Tick(atm, balloon.Snapshot{
				Altitude: units.Meters(500),
				Velocity: r3.Vector{Z: 4},
				Shape:    box,
				Drag:     forces.ConstantDrag(1.05),
				Envelope: *env,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Area.SquareMeters()).To(BeNumerically("~", 4, 1e-12))
			Expect(out.Forces.Drag.Z).To(BeNumerically("<", 0))
			Expect(out.Forces.Drag.Dot(r3.Vector{Z: 4})).To(BeNumerically("<=", 0))
		})

		It("propagates atmosphere errors", func() {
			env, err := balloon.New(balloon.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			_, err = balloon.Tick(atm, balloon.Snapshot{Altitude: units.Meters(90000), Envelope: *env})
			Expect(err).To(MatchError(atmosphere.ErrAltitudeOutOfBounds))
		})

		It("accepts any atmosphere model", func() {
			env, err := balloon.New(balloon.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			thin := fixedAtmosphere{state: atmosphere.State{
				Temperature: units.Kelvin(250),
				Pressure:    units.Pascals(100),
				Density:     units.KilogramsPerCubicMeter(0.001),
			}}
			out, err := balloon.Tick(thin, balloon.Snapshot{Altitude: units.Meters(100), Envelope: *env})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Envelope.Burst).To(BeTrue())
			Expect(out.Envelope.Cause).To(Equal(balloon.BurstOverexpanded))
		})
	})

	Describe("FreeLift", func() {
		It("is positive at launch and negative once burst", func() {
			env, err := balloon.New(balloon.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(env.FreeLift(atmosphere.SeaLevelDensity()).Kilograms()).To(BeNumerically(">", 0))

			env.Burst = true
			Expect(env.FreeLift(atmosphere.SeaLevelDensity())).To(Equal(-(env.EnvelopeMass + env.PayloadMass)))
		})
	})
})
