package sim_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/diskbox/internal/dynamo"
	"github.com/san-kum/diskbox/internal/physics"
	"github.com/san-kum/diskbox/internal/sim"
	"github.com/san-kum/diskbox/internal/storage"
)

type recordingSink struct {
	frames    []sim.Frame
	summaries []sim.Summary
}

func (r *recordingSink) WriteFrame(f *sim.Frame) error {
	c := *f
	c.Particles = append([]sim.ParticleState(nil), f.Particles...)
	r.frames = append(r.frames, c)
	return nil
}

func (r *recordingSink) WriteSummary(s sim.Summary) error {
	r.summaries = append(r.summaries, s)
	return nil
}

type failingSink struct{ sim.Sink }

func (failingSink) WriteSummary(sim.Summary) error { return errors.New("disk full") }

// snapshotSink records the snapshot file contents after every frame.
type snapshotSink struct {
	*storage.Exporter
	snapshots []string
}

func (s *snapshotSink) WriteFrame(f *sim.Frame) error {
	if err := s.Exporter.WriteFrame(f); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(), storage.SnapshotFile))
	if err != nil {
		return err
	}
	s.snapshots = append(s.snapshots, string(data))
	return nil
}

type countingObserver struct{ steps int }

func (c *countingObserver) OnStep(sim.Summary) { c.steps++ }

type maxPressure struct{ max float64 }

func (m *maxPressure) Name() string { return "max_pressure" }
func (m *maxPressure) Observe(s sim.Summary) {
	m.max = math.Max(m.max, s.Pressure)
}
func (m *maxPressure) Value() float64 { return m.max }
func (m *maxPressure) Reset()         { m.max = 0 }

func newGas(seed int64, n int, side, radius, vmax float64) (*physics.Boundary, []physics.Particle) {
	box, err := physics.NewSquareBoundary(side)
	Expect(err).NotTo(HaveOccurred())
	ps, err := physics.NewLattice(physics.LatticeParams{
		Side: side, N: n, Radius: radius, Mass: 1, VMax: vmax,
	}, rand.New(rand.NewSource(seed)))
	Expect(err).NotTo(HaveOccurred())
	return box, ps
}

func tempDir() string {
	dir, err := os.MkdirTemp("", "diskbox-sim-")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(os.RemoveAll, dir)
	return dir
}

func particle(x, y, vx, vy, r float64) physics.Particle {
	p, err := physics.NewParticle(1, x, y, vx, vy, r)
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with the reference four particle box", func() {
		It("exports one pressure line and keeps speeds within vmax after one step", func() {
			dir := tempDir()
			exp, err := storage.NewExporter(dir)
			Expect(err).NotTo(HaveOccurred())

			box, ps := newGas(1, 4, 10, 0.5, 1.0)
			s := sim.New(box, ps, exp)

			result, err := s.Run(ctx, sim.Config{Dt: 0.01, Steps: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Close()).To(Succeed())
			Expect(result.StepsTaken).To(Equal(1))

			Expect(s.Particles()).To(HaveLen(4))
			for i := range s.Particles() {
				speed := s.Particles()[i].Speed()
				Expect(speed).To(BeNumerically(">", 0))
				Expect(speed).To(BeNumerically("<=", 1.0))
			}

			data, err := os.ReadFile(filepath.Join(dir, storage.PressureFile))
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Split(strings.TrimRight(string(data), "\n"), "\n")).To(HaveLen(1))

			snap, err := os.ReadFile(filepath.Join(dir, storage.SnapshotFile))
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(snap), "\n")).To(Equal(4))
		})
	})

	Context("frame ordering", func() {
		It("exports the pre-step state and the energy before moving", func() {
			box, _ := physics.NewSquareBoundary(10)
			sink := &recordingSink{}
			s := sim.New(box, []physics.Particle{particle(1, 2, 3, 4, 0.5)}, sink)

			_, err := s.Step(0.1)
			Expect(err).NotTo(HaveOccurred())

			Expect(sink.frames).To(HaveLen(1))
			Expect(sink.frames[0].Particles[0]).To(Equal(sim.ParticleState{X: 1, Y: 2, Speed: 5}))
			Expect(sink.frames[0].Energy).To(Equal(12.5))
			Expect(s.Particles()[0].X()).To(BeNumerically("~", 1.3, 1e-12))
			Expect(s.Particles()[0].Y()).To(BeNumerically("~", 2.4, 1e-12))
		})

		It("records a wall contact at exactly one radius once per step", func() {
			box, _ := physics.NewSquareBoundary(10)
			sink := &recordingSink{}
			s := sim.New(box, []physics.Particle{particle(-4.5, 0, 1, 0, 0.5)}, sink)

			summary, err := s.Step(0.01)
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.Rebounds).To(Equal(1))
			Expect(summary.Samples).To(Equal(1))
			Expect(summary.Pressure).To(BeNumerically("~", 1.0/3, 1e-12))
			Expect(s.Particles()[0].Vel().X).To(Equal(-1.0))
		})

		It("resolves pairwise collisions before wall rebounds", func() {
			box, _ := physics.NewSquareBoundary(10)
			ps := []physics.Particle{
				particle(-0.4, 0, 1, 0, 0.5),
				particle(0.4, 0, -1, 0, 0.5),
			}
			s := sim.New(box, ps, nil)

			summary, err := s.Step(0.01)
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.Collisions).To(Equal(1))
			Expect(summary.Rebounds).To(BeZero())
			Expect(s.Particles()[0].Vel().X).To(Equal(-1.0))
			Expect(s.Particles()[1].Vel().X).To(Equal(1.0))
		})

		It("carries pressure forward through a window without contacts", func() {
			box, _ := physics.NewSquareBoundary(10)
			sink := &recordingSink{}
			s := sim.New(box, []physics.Particle{particle(-4.5, 0, -1, 0, 0.5)}, sink)

			_, err := s.Run(ctx, sim.Config{Dt: 1, Steps: 2})
			Expect(err).NotTo(HaveOccurred())

			Expect(sink.summaries).To(HaveLen(2))
			Expect(sink.summaries[1].Samples).To(BeZero())
			Expect(sink.summaries[1].Pressure).To(Equal(sink.summaries[0].Pressure))
			Expect(sink.summaries[1].Time).To(Equal(1.0))
		})
	})

	Context("over a full run", func() {
		It("conserves kinetic energy", func() {
			box, ps := newGas(3, 49, 10, 0.5, 2.0)
			s := sim.New(box, ps, nil)

			result, err := s.Run(ctx, sim.Config{Dt: 0.01, Steps: 300, ValidateState: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.StepsTaken).To(Equal(300))
			Expect(result.EnergyDrift).To(BeNumerically("<", 1e-9))
			Expect(result.Rebounds).To(BeNumerically(">", 0))
		})

		It("produces identical snapshot files for the same seed", func() {
			run := func() []string {
				exp, err := storage.NewExporter(tempDir())
				Expect(err).NotTo(HaveOccurred())
				defer exp.Close()

				sink := &snapshotSink{Exporter: exp}
				box, ps := newGas(7, 20, 10, 0.9, 3.0)
				_, err = sim.New(box, ps, sink).Run(ctx, sim.Config{Dt: 0.01, Steps: 50})
				Expect(err).NotTo(HaveOccurred())
				return sink.snapshots
			}

			first := run()
			second := run()
			Expect(first).To(HaveLen(50))
			Expect(second).To(Equal(first))
		})

		It("feeds metrics and observers once per step", func() {
			box, ps := newGas(5, 16, 10, 0.5, 1.0)
			s := sim.New(box, ps, nil)
			obs := &countingObserver{}
			s.AddObserver(obs)
			s.AddMetric(&maxPressure{})

			result, err := s.Run(ctx, sim.Config{Dt: 0.05, Steps: 40})
			Expect(err).NotTo(HaveOccurred())

			Expect(obs.steps).To(Equal(40))
			Expect(result.Metrics).To(HaveKey("max_pressure"))
			Expect(s.StepCount()).To(Equal(40))
		})
	})

	Context("failure handling", func() {
		DescribeTable("rejects invalid configs before stepping",
			func(cfg sim.Config) {
				box, ps := newGas(1, 4, 10, 0.5, 1.0)
				s := sim.New(box, ps, nil)

				_, err := s.Run(ctx, cfg)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
				Expect(s.StepCount()).To(BeZero())
			},
			Entry("zero dt", sim.Config{Dt: 0, Steps: 10}),
			Entry("negative dt", sim.Config{Dt: -0.1, Steps: 10}),
			Entry("NaN dt", sim.Config{Dt: math.NaN(), Steps: 10}),
			Entry("zero steps", sim.Config{Dt: 0.01, Steps: 0}),
		)

		It("stops between steps when the context is cancelled", func() {
			box, ps := newGas(1, 4, 10, 0.5, 1.0)
			s := sim.New(box, ps, nil)

			cctx, cancel := context.WithCancel(ctx)
			cancel()

			result, err := s.Run(cctx, sim.Config{Dt: 0.01, Steps: 10})
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.StepsTaken).To(BeZero())
		})

		It("aborts on a sink failure", func() {
			box, ps := newGas(1, 4, 10, 0.5, 1.0)
			s := sim.New(box, ps, failingSink{sim.Discard})

			_, err := s.Run(ctx, sim.Config{Dt: 0.01, Steps: 10})
			Expect(err).To(MatchError(dynamo.ErrSink))

			var se *dynamo.SimError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(BeZero())
		})

		It("reports non-finite particles when validation is on", func() {
			box, _ := physics.NewSquareBoundary(10)
			ps := []physics.Particle{particle(0, 0, math.NaN(), 0, 0.5)}

			_, err := sim.New(box, ps, nil).Run(ctx, sim.Config{Dt: 0.01, Steps: 5, ValidateState: true})
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})

		It("keeps going on non-finite particles when validation is off", func() {
			box, _ := physics.NewSquareBoundary(10)
			ps := []physics.Particle{particle(0, 0, math.NaN(), 0, 0.5)}

			result, err := sim.New(box, ps, nil).Run(ctx, sim.Config{Dt: 0.01, Steps: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(5))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one simulation per seed", func() {
		var seeds = make(chan int64, 4)
		build := func(seed int64) (*sim.Simulator, error) {
			seeds <- seed
			box, ps := newGas(seed, 9, 10, 0.5, 1.0)
			return sim.New(box, ps, nil), nil
		}

		e := sim.NewEnsemble(build, 4, 100)
		e.SetLimit(2)
		results, err := e.Run(context.Background(), sim.Config{Dt: 0.01, Steps: 20})
		Expect(err).NotTo(HaveOccurred())
		close(seeds)

		Expect(results).To(HaveLen(4))
		for _, r := range results {
			Expect(r.StepsTaken).To(Equal(20))
		}

		got := make([]int64, 0, 4)
		for s := range seeds {
			got = append(got, s)
		}
		Expect(got).To(ConsistOf(int64(100), int64(101), int64(102), int64(103)))
	})

	It("propagates build errors", func() {
		dirs := []string{tempDir(), tempDir()}
		build := func(seed int64) (*sim.Simulator, error) {
			if seed == 1 {
				return nil, physics.ErrRadiusTooLarge
			}
			exp, err := storage.NewExporter(dirs[seed])
			if err != nil {
				return nil, err
			}
			box, ps := newGas(seed, 4, 10, 0.5, 1.0)
			return sim.New(box, ps, exp), nil
		}

		_, err := sim.NewEnsemble(build, 2, 0).Run(context.Background(), sim.Config{Dt: 0.01, Steps: 5})
		Expect(err).To(MatchError(physics.ErrRadiusTooLarge))
	})
})
