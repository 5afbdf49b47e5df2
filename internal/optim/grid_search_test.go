package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/integrators"
	"github.com/san-kum/trajsim/internal/metrics"
	"github.com/san-kum/trajsim/internal/sim"
)

func newSim() *sim.Simulator {
	s := sim.New(integrators.NewSemiImplicitEuler(), nil)
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	return s
}

func TestElevationGrid(t *testing.T) {
	grid, err := ElevationGrid(30, 60, 7.5)
	require.NoError(t, err)
	require.Equal(t, []float64{30, 37.5, 45, 52.5, 60}, grid)

	_, err = ElevationGrid(10, 0, 1)
	require.ErrorIs(t, err, dynamo.ErrInvalidConfig)

	_, err = ElevationGrid(0, 10, 0)
	require.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestGridSearchMaxRangeInVacuum(t *testing.T) {
	env := dynamo.Environment{Caliber: 1, BallisticCoefficient: 1e12}
	cfg := dynamo.Config{Dt: 0.1, Steps: 2000, StopAtGround: true, ValidateState: true}
	grid, err := ElevationGrid(30, 60, 5)
	require.NoError(t, err)

	best, results, err := GridSearch(context.Background(), grid, env, cfg, newSim, "range", Maximize)
	require.NoError(t, err)
	require.Len(t, results, len(grid))
	require.Equal(t, 45.0, best.Elevation)
	require.InDelta(t, 850*850/9.81, best.Value, 850*850/9.81*0.01)
}

func TestSelectMinimizeSkipsNonFinite(t *testing.T) {
	results := []sim.SweepResult{
		{Elevation: 10, Result: &dynamo.Result{Metrics: map[string]float64{"apex": math.NaN()}}},
		{Elevation: 20, Result: &dynamo.Result{Metrics: map[string]float64{"apex": 5}}},
		{Elevation: 30, Result: &dynamo.Result{Metrics: map[string]float64{"apex": 3}}},
		{Elevation: 40, Result: &dynamo.Result{Metrics: map[string]float64{"apex": 3}}},
	}

	best, err := Select(results, "apex", Minimize)
	require.NoError(t, err)
	require.Equal(t, 30.0, best.Elevation)
}

func TestSelectNoCandidate(t *testing.T) {
	results := []sim.SweepResult{
		{Elevation: 45, Result: &dynamo.Result{Metrics: map[string]float64{"range": math.Inf(1)}}},
	}
	_, err := Select(results, "range", Maximize)
	require.True(t, errors.Is(err, ErrNoCandidate))
}
