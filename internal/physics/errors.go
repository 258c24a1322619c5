package physics

import "errors"

// Setup validation errors. They are returned to the caller for correction and
// never raised once a run is under way.
var (
	ErrInvalidExtent  = errors.New("physics: box extent must satisfy min < max on both axes")
	ErrInvalidRadius  = errors.New("physics: radius must be positive")
	ErrRadiusTooLarge = errors.New("physics: radius must be less than half the lattice pitch")
	ErrInvalidMass    = errors.New("physics: mass must be positive")
	ErrInvalidParams  = errors.New("physics: invalid lattice parameters")
)
