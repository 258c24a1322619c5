package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidState indicates a particle whose position or velocity is NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates driver parameters that cannot produce a run.
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")

	// ErrSink indicates the frame exporter failed to write or flush.
	ErrSink = errors.New("dynamo: frame export failed")
)

// SimError wraps an error with the step at which the run stopped.
type SimError struct {
	Step    int
	Time    float64
	Message string
	Wrapped error
}

func (e *SimError) Error() string {
	if e.Wrapped == nil {
		return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
	}
	return fmt.Sprintf("step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Message, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
