// Package dynamo provides core simulation primitives for the trajectory
// stepper.
//
//   - [Vec2]: position or velocity in the launch plane
//   - [Projectile]: point mass state (position, velocity)
//   - [Environment]: wind, caliber and ballistic coefficient for one step
//   - [Integrator]: advances a projectile by one fixed step
//   - [Metric], [Observer]: per-step hooks used by simulators
//
// # Example
//
//	p := physics.Launch(45)
//	env := dynamo.Environment{Caliber: 0.00762, BallisticCoefficient: 0.4}
//	p = physics.Step(p, 0.01, env)
//
// All types are plain values. Nothing in this package holds shared state.
package dynamo
