package flight_test

import (
	"context"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/balloon"
	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/integrators"
	"github.com/san-kum/buoy/internal/log"
	"github.com/san-kum/buoy/internal/metrics"
	"github.com/san-kum/buoy/internal/units"
)

type brokenAtmosphere struct{}

func (brokenAtmosphere) State(h units.Length) (atmosphere.State, error) {
	return atmosphere.State{}, &atmosphere.NumericError{Altitude: h.Meters(), Quantity: "pressure", Value: math.NaN()}
}

// outageAtmosphere reports the altitude out of bounds on the listed calls.
type outageAtmosphere struct {
	mu    sync.Mutex
	calls int
	fail  map[int]bool
}

func (a *outageAtmosphere) State(h units.Length) (atmosphere.State, error) {
	a.mu.Lock()
	call := a.calls
	a.calls++
	a.mu.Unlock()
	if a.fail[call] {
		return atmosphere.State{}, &atmosphere.AltitudeOutOfBoundsError{Altitude: h.Meters(), Min: atmosphere.MinAltitude, Max: atmosphere.MaxAltitude}
	}
	return atmosphere.StandardAtmosphere1976{}.State(h)
}

type countingObserver struct {
	ticks   int
	samples int
}

func (o *countingObserver) OnTick(t float64, samples []flight.Sample) {
	o.ticks++
	o.samples += len(samples)
}

func newBody(id int, mutate func(*balloon.Config), altitude float64) *flight.Body {
	cfg := balloon.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	env, err := balloon.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return flight.NewBody(id, "test", env, r3.Vector{Y: altitude})
}

func newRunner(atm balloon.Atmosphere) *flight.Runner {
	rk4, err := integrators.New("rk4")
	Expect(err).NotTo(HaveOccurred())
	return flight.NewRunner(atm, rk4, log.Discard())
}

var _ = Describe("Runner", func() {
	var (
		ctx    context.Context
		atm    atmosphere.StandardAtmosphere1976
		runner *flight.Runner
		cfg    flight.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		atm = atmosphere.StandardAtmosphere1976{Log: log.Discard()}
		runner = newRunner(atm)
		cfg = flight.DefaultConfig()
	})

	Describe("a full flight", func() {
		It("ascends, bursts, descends and lands", func() {
			body := newBody(0, func(c *balloon.Config) { c.BurstAltitude = units.Meters(2000) }, 0)
			cfg.Duration = 2000
			cfg.SampleEvery = 50

			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Faults).To(BeEmpty())

			Expect(body.Envelope.Burst).To(BeTrue())
			Expect(body.Envelope.Cause).To(Equal(balloon.BurstAltitudeExceeded))
			Expect(body.BurstAltitude).To(BeNumerically(">", 2000))
			Expect(body.BurstAltitude).To(BeNumerically("<", 2010))
			Expect(body.Status).To(Equal(flight.Landed))
			Expect(body.State.Altitude()).To(BeNumerically("==", 0))
			Expect(body.State.Velocity().Norm()).To(BeNumerically("==", 0))
			Expect(res.StepsTaken).To(BeNumerically("<", 20000))

			sum, err := metrics.Summarize(res.Tracks[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Burst).To(BeTrue())
			Expect(sum.Landed).To(BeTrue())
			Expect(sum.MaxAltitude).To(BeNumerically(">", 2000))
			Expect(sum.MeanAscentRate).To(BeNumerically(">", 1))
			Expect(sum.MaxDescentRate).To(BeNumerically(">", 1))
			Expect(sum.BurstTime).To(BeNumerically("<", sum.LandingTime))
		})

		It("keeps ascending before burst", func() {
			body := newBody(0, nil, 0)
			cfg.Duration = 60

			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			track := res.Tracks[0]
			for i := 1; i < len(track); i++ {
				Expect(track[i].Altitude()).To(BeNumerically(">=", track[i-1].Altitude()))
			}
			Expect(body.State.Velocity().Y).To(BeNumerically(">", 0))
			Expect(body.Envelope.CurrentVolume.CubicMeters()).To(BeNumerically(">", 12))
		})

		It("lands a body too heavy to lift", func() {
			body := newBody(0, func(c *balloon.Config) { c.PayloadMass = units.Kilograms(100) }, 0)
			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(body.Status).To(Equal(flight.Landed))
			Expect(body.State.Altitude()).To(BeNumerically("==", 0))
			Expect(res.StepsTaken).To(Equal(1))
		})
	})

	Describe("fault policies", func() {
		var body *flight.Body

		BeforeEach(func() {
			body = newBody(0, nil, 90000)
			cfg.Duration = 1
		})

		It("holds the body on Skip", func() {
			cfg.Policy = flight.Skip
			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Faults).To(HaveLen(1))
			Expect(res.Faults[0].Action).To(Equal("skipped"))
			Expect(res.Faults[0].Step).To(Equal(0))
			Expect(res.Faults[0].Ticks).To(Equal(10))
			Expect(res.Faults[0]).To(MatchError(atmosphere.ErrAltitudeOutOfBounds))
			Expect(body.Status).To(Equal(flight.Active))
			Expect(body.State.Altitude()).To(Equal(90000.0))
		})

		It("records each run of skipped ticks once", func() {
			runner = newRunner(&outageAtmosphere{fail: map[int]bool{0: true, 1: true, 2: true, 5: true, 6: true}})
			body = newBody(0, nil, 100)
			cfg.Policy = flight.Skip
			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Faults).To(HaveLen(2))
			Expect(res.Faults[0].Step).To(Equal(0))
			Expect(res.Faults[0].Ticks).To(Equal(3))
			Expect(res.Faults[1].Step).To(Equal(5))
			Expect(res.Faults[1].Ticks).To(Equal(2))
			Expect(res.Faults[1].Error()).To(ContainSubstring("2 ticks"))
			Expect(body.Status).To(Equal(flight.Active))
		})

		It("evaluates at the clamped altitude on Clamp", func() {
			cfg.Policy = flight.Clamp
			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Faults).To(HaveLen(1))
			Expect(res.Faults[0].Action).To(Equal("clamped"))
			Expect(res.Faults[0].Ticks).To(Equal(10))
			Expect(body.Status).To(Equal(flight.Active))
			Expect(body.State.Altitude()).To(BeNumerically("<", 90000))
			Expect(body.Envelope.Burst).To(BeTrue())
		})

		It("stops the body on Flag", func() {
			cfg.Policy = flight.Flag
			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Faults).To(HaveLen(1))
			Expect(res.Faults[0].Action).To(Equal("flagged"))
			Expect(body.Status).To(Equal(flight.Faulted))
			Expect(res.StepsTaken).To(Equal(1))
		})

		It("always flags numeric errors", func() {
			runner = newRunner(brokenAtmosphere{})
			body = newBody(0, nil, 100)
			cfg.Policy = flight.Skip
			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Faults).To(HaveLen(1))
			Expect(res.Faults[0]).To(MatchError(atmosphere.ErrNumeric))
			Expect(body.Status).To(Equal(flight.Faulted))
		})

		It("flags a massless body", func() {
			body = newBody(0, func(c *balloon.Config) {
				c.EnvelopeMass = 0
				c.PayloadMass = 0
			}, 100)
			body.Envelope.Burst = true
			res, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Faults).To(HaveLen(1))
			Expect(res.Faults[0]).To(MatchError(flight.ErrInvalidState))
			Expect(body.Status).To(Equal(flight.Faulted))
		})

		It("isolates faults to the failing body", func() {
			healthy := newBody(1, nil, 0)
			cfg.Policy = flight.Flag
			_, err := runner.Run(ctx, []*flight.Body{body, healthy}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(body.Status).To(Equal(flight.Faulted))
			Expect(healthy.Status).To(Equal(flight.Active))
			Expect(healthy.State.Altitude()).To(BeNumerically(">", 0))
		})
	})

	Describe("configuration", func() {
		DescribeTable("rejects invalid configs",
			func(mutate func(*flight.Config)) {
				mutate(&cfg)
				_, err := runner.Run(ctx, []*flight.Body{newBody(0, nil, 0)}, cfg)
				Expect(err).To(MatchError(flight.ErrInvalidConfig))
			},
			Entry("zero dt", func(c *flight.Config) { c.Dt = 0 }),
			Entry("negative duration", func(c *flight.Config) { c.Duration = -1 }),
			Entry("negative workers", func(c *flight.Config) { c.Workers = -1 }),
		)

		It("rejects an empty body set", func() {
			_, err := runner.Run(ctx, nil, cfg)
			Expect(err).To(MatchError(flight.ErrInvalidConfig))
		})

		It("enforces the body budget", func() {
			cfg.MaxBodies = 1
			_, err := runner.Run(ctx, []*flight.Body{newBody(0, nil, 0), newBody(1, nil, 0)}, cfg)
			Expect(err).To(MatchError(flight.ErrTooManyBodies))
		})

		It("rejects a malformed state", func() {
			body := newBody(0, nil, 0)
			body.State = flight.State{0, 0, 0}
			_, err := runner.Run(ctx, []*flight.Body{body}, cfg)
			Expect(err).To(MatchError(flight.ErrInvalidState))
		})

		It("stops between ticks when cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res, err := runner.Run(cctx, []*flight.Body{newBody(0, nil, 0)}, cfg)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(0))
			Expect(res.Times).To(Equal([]float64{0}))
		})
	})

	Describe("telemetry", func() {
		It("samples every n ticks and notifies observers", func() {
			obs := &countingObserver{}
			runner.AddObserver(obs)
			cfg.Duration = 10
			cfg.SampleEvery = 10

			bodies := []*flight.Body{newBody(0, nil, 0), newBody(1, nil, 0)}
			res, err := runner.Run(ctx, bodies, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(100))
			Expect(res.Times).To(HaveLen(11))
			Expect(res.Times[len(res.Times)-1]).To(BeNumerically("~", 10, 1e-9))
			Expect(res.Tracks).To(HaveLen(2))
			Expect(res.Tracks[1]).To(HaveLen(11))
			Expect(obs.ticks).To(Equal(11))
			Expect(obs.samples).To(Equal(22))
		})

		It("reduces metrics over the run", func() {
			for _, m := range metrics.Default() {
				runner.AddMetric(m)
			}
			cfg.Duration = 30
			res, err := runner.Run(ctx, []*flight.Body{newBody(0, nil, 0)}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics["max_altitude"]).To(BeNumerically(">", 0))
			Expect(res.Metrics["max_ascent_rate"]).To(BeNumerically(">", 0))
			Expect(math.IsNaN(res.Metrics["burst_altitude"])).To(BeTrue())
		})

		It("records ambient state after the first tick", func() {
			cfg.Duration = 1
			res, err := runner.Run(ctx, []*flight.Body{newBody(0, nil, 0)}, cfg)
			Expect(err).NotTo(HaveOccurred())
			last := res.Tracks[0][len(res.Tracks[0])-1]
			Expect(last.Density).To(BeNumerically("~", 1.225, 0.01))
			Expect(last.Pressure).To(BeNumerically("~", 101300, 500))
			Expect(last.NetForce.Y).To(BeNumerically(">", 0))
		})
	})

	Describe("parallel evaluation", func() {
		fleet := func() []*flight.Body {
			bodies := make([]*flight.Body, 9)
			for i := range bodies {
				payload := 1.0 + 0.2*float64(i)
				bodies[i] = newBody(i, func(c *balloon.Config) { c.PayloadMass = units.Kilograms(payload) }, 0)
			}
			return bodies
		}

		It("matches a single worker exactly", func() {
			cfg.Duration = 60

			cfg.Workers = 1
			serial, err := runner.Run(ctx, fleet(), cfg)
			Expect(err).NotTo(HaveOccurred())

			cfg.Workers = 4
			parallel, err := newRunner(atm).Run(ctx, fleet(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(parallel.Tracks).To(Equal(serial.Tracks))
			Expect(parallel.Times).To(Equal(serial.Times))
		})

		It("orders heavier payloads lower", func() {
			cfg.Duration = 60
			bodies := fleet()
			_, err := runner.Run(ctx, bodies, cfg)
			Expect(err).NotTo(HaveOccurred())
			for i := 1; i < len(bodies); i++ {
				Expect(bodies[i].State.Altitude()).To(BeNumerically("<", bodies[i-1].State.Altitude()))
			}
		})
	})
})

var _ = Describe("State", func() {
	It("splits into position and velocity", func() {
		s := flight.NewState(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{X: 4, Y: 5, Z: 6})
		Expect(s).To(HaveLen(flight.StateDim))
		Expect(s.Position()).To(Equal(r3.Vector{X: 1, Y: 2, Z: 3}))
		Expect(s.Velocity()).To(Equal(r3.Vector{X: 4, Y: 5, Z: 6}))
		Expect(s.Altitude()).To(Equal(2.0))
	})

	It("clones without aliasing", func() {
		s := flight.NewState(r3.Vector{Y: 1}, r3.Vector{})
		c := s.Clone()
		c[1] = 5
		Expect(s[1]).To(Equal(1.0))
	})

	It("detects non-finite components", func() {
		Expect(flight.State{0, 1, 2, 3, 4, 5}.IsValid()).To(BeTrue())
		Expect(flight.State{0, math.NaN(), 0, 0, 0, 0}.IsValid()).To(BeFalse())
		Expect(flight.State{0, 0, 0, math.Inf(1), 0, 0}.IsValid()).To(BeFalse())
	})

	It("measures differences", func() {
		a := flight.State{3, 4, 0, 0, 0, 0}
		Expect(a.Sub(flight.State{0, 0, 0, 0, 0, 0}).Norm()).To(BeNumerically("~", 5, 1e-12))
	})
})

var _ = DescribeTable("ParsePolicy",
	func(in string, want flight.FaultPolicy) {
		got, err := flight.ParsePolicy(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
		Expect(flight.ParsePolicy(got.String())).To(Equal(want))
	},
	Entry("empty", "", flight.Skip),
	Entry("skip", "skip", flight.Skip),
	Entry("clamp", " Clamp ", flight.Clamp),
	Entry("flag", "FLAG", flight.Flag),
)

var _ = It("rejects unknown policies", func() {
	_, err := flight.ParsePolicy("retry")
	Expect(err).To(MatchError(flight.ErrInvalidConfig))
})

var _ = It("round-trips statuses as text", func() {
	for _, s := range []flight.Status{flight.Active, flight.Landed, flight.Faulted} {
		b, err := s.MarshalText()
		Expect(err).NotTo(HaveOccurred())
		var got flight.Status
		Expect(got.UnmarshalText(b)).To(Succeed())
		Expect(got).To(Equal(s))
	}
	var bad flight.Status
	Expect(bad.UnmarshalText([]byte("drifting"))).NotTo(Succeed())
})
