package sim

// ParticleState is the exported view of one disk in a frame.
type ParticleState struct {
	X, Y  float64
	Speed float64
}

// Frame is the pre-step snapshot of a run. The simulator reuses one Frame
// across steps, so sinks and observers must copy anything they keep.
type Frame struct {
	Step      int
	Time      float64
	Particles []ParticleState
	Energy    float64
}

// Summary holds the scalar results of one completed step.
type Summary struct {
	Step       int
	Time       float64
	Pressure   float64
	Energy     float64
	Samples    int
	Collisions int
	Rebounds   int
}

// Sink receives every frame and summary. Each call must have flushed its
// output before returning.
type Sink interface {
	WriteFrame(f *Frame) error
	WriteSummary(s Summary) error
}

type Metric interface {
	Name() string
	Observe(s Summary)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Summary)
}

type Config struct {
	Dt            float64
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Steps:         300,
		ValidateState: true,
	}
}

// Duration is the simulated time covered by a full run.
func (c Config) Duration() float64 {
	return c.Dt * float64(c.Steps)
}

type Result struct {
	StepsTaken    int
	InitialEnergy float64
	FinalEnergy   float64
	EnergyDrift   float64
	FinalPressure float64
	Collisions    int
	Rebounds      int
	Metrics       map[string]float64
}

type discard struct{}

func (discard) WriteFrame(*Frame) error    { return nil }
func (discard) WriteSummary(Summary) error { return nil }

// Discard is a Sink that drops everything.
var Discard Sink = discard{}
