package integrators

import (
	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/physics"
)

// SemiImplicitEuler updates velocity first, then position with the new
// velocity.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(p dynamo.Projectile, dt float64, env dynamo.Environment) dynamo.Projectile {
	return physics.Step(p, dt, env)
}
