// Package physics models a gas of hard disks in a rigid rectangular box.
//
// The package has four parts:
//
//   - [Boundary]: fixed extent plus the per-window wall pressure accumulator
//   - [Particle]: one disk; [Particle.Advance] and [Particle.Rebound]
//   - [Collide]: the pairwise elastic exchange between two disks
//   - [NewLattice]: initial placement on a centered square lattice
//
// # Pressure
//
// Every wall contact records m*|v|^2 (post reflection) into the boundary.
// The driver resets the window at the start of a frame and finalizes it at the
// end:
//
//	box.ResetPressureWindow()
//	for i := range ps {
//	    ps[i].Rebound(box)
//	}
//	p := box.FinalizePressure()
//
// A window with no contacts carries the previous mean forward.
package physics
