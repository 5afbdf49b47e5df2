// Package physics implements the point-mass trajectory model.
//
// A step is semi-implicit Euler: [UpdateVelocity] first, using the old
// velocity for the drag direction, then [UpdatePosition] with the new
// velocity. [Step] composes the two on a copy and is the function every
// driver uses:
//
//	p := physics.Launch(30)
//	for i := 0; i < 100; i++ {
//	    p = physics.Step(p, physics.DefaultDt, env)
//	}
//
// Drag is quadratic in speed, scaled by 1/(bc*caliber^2) and a fixed air
// density of 1.225 kg/m^3. Wind enters as a horizontal acceleration.
package physics
