// Package analysis characterizes the speed distribution of a disk gas.
//
// The package works on plain speed slices as read back from a run:
//
//   - [FiniteSpeeds]: drops non-finite and non-positive entries
//   - [SpeedHistogram]: equal-width binning with gonum stat
//   - [MaxwellBoltzmann2D]: equilibrium speed density in two dimensions
//   - [Temperature2D]: kT from total kinetic energy
//
// # Equilibrium Check
//
// An initial uniform speed draw relaxes towards the 2D Maxwell-Boltzmann
// shape after enough collisions:
//
//	h, _ := analysis.SpeedHistogram(speeds, 20)
//	meanSq := analysis.MeanSquare(speeds)
//	for i, c := range h.Centers() {
//	    fmt.Println(c, h.Density[i], analysis.MaxwellBoltzmann2D(c, meanSq))
//	}
package analysis
