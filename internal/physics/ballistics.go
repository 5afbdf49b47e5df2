package physics

import (
	"math"
	"time"

	"github.com/san-kum/trajsim/internal/dynamo"
)

const (
	Gravity        = 9.81
	AirDensity     = 1.225
	MuzzleVelocity = 850.0

	DefaultDt    = 0.01
	TickInterval = 10 * time.Millisecond
)

// DragForce returns the signed drag deceleration for the given speed.
// Caliber and coefficient must be strictly positive; zero yields Inf or NaN.
func DragForce(speed, caliber, ballisticCoefficient float64) float64 {
	k := 1.0 / (ballisticCoefficient * (caliber * caliber))
	return -0.5 * k * AirDensity * (speed * speed)
}

// UpdateVelocity applies wind, gravity and drag to p.Velocity over dt.
// A projectile at rest is left untouched, gravity included.
func UpdateVelocity(p *dynamo.Projectile, dt float64, env dynamo.Environment) {
	// explicit float64 conversions keep products from fusing into FMA,
	// so trajectories are bit-identical across architectures
	vx, vy := p.Velocity.X, p.Velocity.Y
	v := math.Sqrt(float64(vx*vx) + float64(vy*vy))
	if v == 0 {
		return
	}

	drag := DragForce(v, env.Caliber, env.BallisticCoefficient)
	ax := env.Wind + drag*vx/v
	ay := -Gravity + drag*vy/v

	p.Velocity.X += float64(ax * dt)
	p.Velocity.Y += float64(ay * dt)
}

// UpdatePosition moves p by its current velocity. Call it after
// UpdateVelocity so the step is semi-implicit.
func UpdatePosition(p *dynamo.Projectile, dt float64) {
	p.Position.X += float64(p.Velocity.X * dt)
	p.Position.Y += float64(p.Velocity.Y * dt)
}

// Step advances a copy of p by one fixed step.
func Step(p dynamo.Projectile, dt float64, env dynamo.Environment) dynamo.Projectile {
	UpdateVelocity(&p, dt, env)
	UpdatePosition(&p, dt)
	return p
}

// Launch returns a projectile at the origin leaving the muzzle at the given
// elevation in degrees.
func Launch(elevationDeg float64) dynamo.Projectile {
	theta := elevationDeg * math.Pi / 180.0
	return dynamo.Projectile{
		Velocity: dynamo.Vec2{
			X: MuzzleVelocity * math.Cos(theta),
			Y: MuzzleVelocity * math.Sin(theta),
		},
	}
}
