package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/logging"
)

// Simulator runs batch simulations with a fixed step count.
type Simulator struct {
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	log        *zap.Logger
}

func New(integrator dynamo.Integrator, log *zap.Logger) *Simulator {
	return &Simulator{
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		log:        logging.OrNop(log),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run steps x0 under env. Metrics see the initial state and every new
// state; observers see only the new states. With cfg.ValidateState the run
// stops at the first non-finite state and records a SimulationError.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.Projectile, env dynamo.Environment, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}

	steps := cfg.StepCount()
	result := &dynamo.Result{
		States:  make([]dynamo.Projectile, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Debug("run started",
		zap.Int("steps", steps),
		zap.Float64("dt", cfg.Dt),
		zap.Float64("wind", env.Wind),
		zap.Float64("caliber", env.Caliber),
		zap.Float64("ballistic_coefficient", env.BallisticCoefficient),
		logging.State(x0),
	)

	x := x0
	t := 0.0
	result.States = append(result.States, x)
	result.Times = append(result.Times, t)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		next := s.integrator.Step(x, cfg.Dt, env)

		if cfg.ValidateState && !next.IsValid() {
			err := &dynamo.SimulationError{Step: i, Time: t + cfg.Dt, State: next, Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.log.Warn("state diverged", zap.Int("step", i), logging.State(next))
			break
		}

		x = next
		t += cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, x)
		result.Times = append(result.Times, t)
		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		if cfg.StopAtGround && x.Position.Y < 0 {
			s.log.Debug("hit ground", zap.Int("step", i), zap.Float64("t", t))
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Info("run finished",
		zap.Int("steps_taken", result.StepsTaken),
		zap.Int("errors", len(result.Errors)),
		logging.State(x),
	)

	return result, nil
}

func validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, dynamo.ErrInvalidConfig)
	}
	if cfg.StepCount() <= 0 {
		return fmt.Errorf("steps or duration must be positive, got steps=%d duration=%f: %w",
			cfg.Steps, cfg.Duration, dynamo.ErrInvalidConfig)
	}
	return nil
}
