package sim

import (
	"context"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds an independent simulator for one seed. Each call must return
// its own particles, boundary and sink.
type Factory func(seed int64) (*Simulator, error)

// Ensemble runs the same setup over consecutive seeds. Runs proceed in
// parallel; each one stays single-threaded.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		build:     build,
		numRuns:   numRuns,
		seedStart: seedStart,
		limit:     runtime.GOMAXPROCS(0),
	}
}

// SetLimit caps the number of concurrent runs. n <= 0 removes the cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns one result per seed, in seed order. Sinks implementing
// io.Closer are closed when their run ends.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() (err error) {
			s, err := e.build(e.seedStart + int64(idx))
			if err != nil {
				return err
			}
			if c, ok := s.sink.(io.Closer); ok {
				defer func() {
					if cerr := c.Close(); err == nil {
						err = cerr
					}
				}()
			}
			results[idx], err = s.Run(gctx, cfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
