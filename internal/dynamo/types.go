package dynamo

import (
	"fmt"
	"math"
)

// Vec2 is a position (m) or velocity (m/s) in the launch plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Scale(factor float64) Vec2 {
	return Vec2{X: v.X * factor, Y: v.Y * factor}
}

func (v Vec2) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// Projectile is the simulated point mass at a single instant.
type Projectile struct {
	Position Vec2 `json:"position"`
	Velocity Vec2 `json:"velocity"`
}

func (p Projectile) IsValid() bool {
	return p.Position.IsFinite() && p.Velocity.IsFinite()
}

// Row flattens the projectile as x, y, vx, vy.
func (p Projectile) Row() []float64 {
	return []float64{p.Position.X, p.Position.Y, p.Velocity.X, p.Velocity.Y}
}

// FromRow is the inverse of Row. Short rows leave missing fields zero.
func FromRow(row []float64) Projectile {
	var vals [4]float64
	copy(vals[:], row)
	return Projectile{
		Position: Vec2{X: vals[0], Y: vals[1]},
		Velocity: Vec2{X: vals[2], Y: vals[3]},
	}
}

// Environment holds the per-step environmental and ballistic inputs.
// It is owned by the caller and passed by value on every step.
type Environment struct {
	Wind                 float64 `json:"wind" yaml:"wind"`
	Caliber              float64 `json:"caliber" yaml:"caliber"`
	BallisticCoefficient float64 `json:"ballistic_coefficient" yaml:"ballistic_coefficient"`
}

// Validate reports parameters that would make the drag term non-finite.
// The integrator itself never calls it.
func (e Environment) Validate() error {
	switch {
	case !isFinite(e.Wind):
		return fmt.Errorf("wind %v: %w", e.Wind, ErrParameterBounds)
	case !isFinite(e.Caliber) || e.Caliber <= 0:
		return fmt.Errorf("caliber must be positive, got %v: %w", e.Caliber, ErrParameterBounds)
	case !isFinite(e.BallisticCoefficient) || e.BallisticCoefficient <= 0:
		return fmt.Errorf("ballistic coefficient must be positive, got %v: %w", e.BallisticCoefficient, ErrParameterBounds)
	}
	return nil
}

type Integrator interface {
	Step(p Projectile, dt float64, env Environment) Projectile
}

type Metric interface {
	Name() string
	Observe(p Projectile, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(p Projectile, t float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(p Projectile, t float64)

func (f ObserverFunc) OnStep(p Projectile, t float64) { f(p, t) }

type Config struct {
	Dt            float64
	Steps         int
	Duration      float64
	StopAtGround  bool
	ValidateState bool
}

// StepCount resolves the number of steps, preferring Steps over Duration.
func (c Config) StepCount() int {
	if c.Steps > 0 {
		return c.Steps
	}
	if c.Dt <= 0 {
		return 0
	}
	return int(math.Round(c.Duration / c.Dt))
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Steps:         100,
		ValidateState: true,
	}
}

type Result struct {
	States     []Projectile
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded state.
func (r *Result) Final() Projectile {
	if len(r.States) == 0 {
		return Projectile{}
	}
	return r.States[len(r.States)-1]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
