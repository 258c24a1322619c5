package metrics

import "github.com/san-kum/diskbox/internal/sim"

// WallHits is the mean number of impulse samples per window.
type WallHits struct {
	name    string
	sum     int
	windows int
}

func NewWallHits() *WallHits {
	return &WallHits{name: "wall_hits"}
}

func (w *WallHits) Name() string { return w.name }

func (w *WallHits) Observe(s sim.Summary) {
	w.sum += s.Samples
	w.windows++
}

func (w *WallHits) Value() float64 {
	if w.windows == 0 {
		return 0
	}
	return float64(w.sum) / float64(w.windows)
}

func (w *WallHits) Reset() {
	w.sum = 0
	w.windows = 0
}

// Default returns the metrics attached to every CLI run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewMeanPressure(),
		NewWallHits(),
	}
}
