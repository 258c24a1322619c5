// Package viz draws a running disk gas in the terminal.
//
// The package implements the live view with the Bubble Tea framework:
//
//   - [Model]: steps a simulator per tick and draws walls and disks
//   - [Picker]: preset menu that opens the live view
//   - [Canvas]: Braille-based pixel canvas, 2x4 sub-pixels per cell
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	.     - Single step while paused
//	+/-   - Double/halve steps per tick
//	R     - Rebuild from the initial lattice
//	Q     - Quit
package viz
