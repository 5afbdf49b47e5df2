package sim

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/logging"
	"github.com/san-kum/trajsim/internal/physics"
)

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	Projectile dynamo.Projectile
	Env        dynamo.Environment
	Elevation  float64
	Time       float64
	Steps      int
	Fired      bool
}

// Session owns the single live projectile. Fire and Step may be called
// from different goroutines; the mutex serializes them.
type Session struct {
	mu         sync.Mutex
	integrator dynamo.Integrator
	dt         float64
	env        dynamo.Environment
	elevation  float64
	projectile dynamo.Projectile
	t          float64
	steps      int
	fired      bool
	observers  []dynamo.Observer
	log        *zap.Logger
}

// NewSession starts at rest at the origin. A non-positive dt falls back to
// physics.DefaultDt.
func NewSession(integrator dynamo.Integrator, env dynamo.Environment, elevation, dt float64, log *zap.Logger) *Session {
	if dt <= 0 {
		dt = physics.DefaultDt
	}
	return &Session{
		integrator: integrator,
		dt:         dt,
		env:        env,
		elevation:  elevation,
		log:        logging.OrNop(log),
	}
}

func (s *Session) AddObserver(o dynamo.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Session) SetWind(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("wind %v: %w", v, dynamo.ErrParameterBounds)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Wind = v
	return nil
}

func (s *Session) SetElevation(deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return fmt.Errorf("elevation %v: %w", deg, dynamo.ErrParameterBounds)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elevation = deg
	return nil
}

// SetCaliber rejects non-positive values and keeps the previous caliber.
func (s *Session) SetCaliber(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	env := s.env
	env.Caliber = v
	if err := env.Validate(); err != nil {
		return err
	}
	s.env = env
	return nil
}

// SetBallisticCoefficient rejects non-positive values and keeps the
// previous coefficient.
func (s *Session) SetBallisticCoefficient(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	env := s.env
	env.BallisticCoefficient = v
	if err := env.Validate(); err != nil {
		return err
	}
	s.env = env
	return nil
}

// Fire relaunches from the origin at the current elevation.
func (s *Session) Fire() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projectile = physics.Launch(s.elevation)
	s.t = 0
	s.steps = 0
	s.fired = true

	s.log.Info("fired",
		zap.Float64("elevation", s.elevation),
		logging.State(s.projectile),
	)
	return s.snapshotLocked()
}

// Step advances one fixed step using the parameters current at call time.
func (s *Session) Step() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasValid := s.projectile.IsValid()
	s.projectile = s.integrator.Step(s.projectile, s.dt, s.env)
	s.t += s.dt
	s.steps++

	if wasValid && !s.projectile.IsValid() {
		s.log.Warn("state diverged", zap.Int("step", s.steps), zap.Float64("t", s.t))
	}
	for _, obs := range s.observers {
		obs.OnStep(s.projectile, s.t)
	}
	return s.snapshotLocked()
}

func (s *Session) Position() dynamo.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectile.Position
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Projectile: s.projectile,
		Env:        s.env,
		Elevation:  s.elevation,
		Time:       s.t,
		Steps:      s.steps,
		Fired:      s.fired,
	}
}

// Drive steps once per tick until ctx is done, then stops the ticks.
func (s *Session) Drive(ctx context.Context, ticks TickSource) error {
	defer ticks.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks.C():
			s.Step()
		}
	}
}
