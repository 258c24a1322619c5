package metrics

import "github.com/san-kum/diskbox/internal/sim"

// MeanPressure averages the finalized window pressure over the windows that
// saw at least one wall contact. Carried-forward windows are skipped.
type MeanPressure struct {
	name    string
	sum     float64
	windows int
}

func NewMeanPressure() *MeanPressure {
	return &MeanPressure{name: "mean_pressure"}
}

func (p *MeanPressure) Name() string { return p.name }

func (p *MeanPressure) Observe(s sim.Summary) {
	if s.Samples == 0 {
		return
	}
	p.sum += s.Pressure
	p.windows++
}

func (p *MeanPressure) Value() float64 {
	if p.windows == 0 {
		return 0
	}
	return p.sum / float64(p.windows)
}

func (p *MeanPressure) Reset() {
	p.sum = 0
	p.windows = 0
}
