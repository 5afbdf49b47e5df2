package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/physics"
)

type SweepResult struct {
	Elevation float64
	Result    *dynamo.Result
}

// Sweep launches one independent run per elevation in parallel. newSim is
// called once per run so metrics are never shared between goroutines.
// Results keep the order of elevations.
func Sweep(ctx context.Context, elevations []float64, env dynamo.Environment, cfg dynamo.Config, newSim func() *Simulator) ([]SweepResult, error) {
	results := make([]SweepResult, len(elevations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, elev := range elevations {
		g.Go(func() error {
			res, err := newSim().Run(ctx, physics.Launch(elev), env, cfg)
			if err != nil {
				return err
			}
			results[i] = SweepResult{Elevation: elev, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
