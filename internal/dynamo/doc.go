// Package dynamo holds the error vocabulary shared by the simulation packages.
//
// Setup problems (bad radius, bad extent) live in [physics]; dynamo covers
// what can go wrong once a run has started:
//
//   - [ErrInvalidState]: a particle went non-finite
//   - [ErrInvalidConfig]: dt or step count rejected before the first step
//   - [ErrSink]: the frame exporter could not write
//
// Errors raised mid-run are wrapped in [SimError] so callers can report the
// step and simulated time:
//
//	var se *dynamo.SimError
//	if errors.As(err, &se) {
//	    fmt.Printf("stopped at step %d\n", se.Step)
//	}
package dynamo
