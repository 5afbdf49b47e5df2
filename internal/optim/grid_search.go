package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no run produced a finite metric")

type Goal int

const (
	Maximize Goal = iota
	Minimize
)

type Best struct {
	Elevation float64
	Value     float64
	Result    *dynamo.Result
}

// ElevationGrid returns from, from+step, ... up to and including to.
func ElevationGrid(from, to, step float64) ([]float64, error) {
	if step <= 0 || to < from {
		return nil, fmt.Errorf("grid [%g, %g] step %g: %w", from, to, step, dynamo.ErrInvalidConfig)
	}
	n := int(math.Floor((to-from)/step+1e-9)) + 1
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = from + float64(i)*step
	}
	return grid, nil
}

// GridSearch sweeps every elevation and returns the one whose metric best
// meets the goal. Runs whose metric is missing or non-finite are skipped;
// ties keep the earlier elevation.
func GridSearch(ctx context.Context, elevations []float64, env dynamo.Environment, cfg dynamo.Config,
	newSim func() *sim.Simulator, metric string, goal Goal) (Best, []sim.SweepResult, error) {

	results, err := sim.Sweep(ctx, elevations, env, cfg, newSim)
	if err != nil {
		return Best{}, nil, err
	}
	best, err := Select(results, metric, goal)
	return best, results, err
}

func Select(results []sim.SweepResult, metric string, goal Goal) (Best, error) {
	var best Best
	found := false
	for _, r := range results {
		v, ok := r.Result.Metrics[metric]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !found || better(v, best.Value, goal) {
			best = Best{Elevation: r.Elevation, Value: v, Result: r.Result}
			found = true
		}
	}
	if !found {
		return Best{}, fmt.Errorf("metric %q: %w", metric, ErrNoCandidate)
	}
	return best, nil
}

func better(v, cur float64, goal Goal) bool {
	if goal == Minimize {
		return v < cur
	}
	return v > cur
}
