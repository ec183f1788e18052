// Package physics is the rigid-body simulation core.
//
// The package defines the bodies, the force generators and the scene that
// advances them:
//
//   - [Body]: a polygon with mass, velocity and force/impulse accumulators
//   - [ForceGenerator]: a rule that adds force to one or two bodies every tick
//   - [Gravity], [Spring], [Drag]: the standard generators
//   - [Scene]: owns bodies and generators and runs one step with [Scene.Tick]
//
// # Integration
//
// [Body.Tick] advances position with the average of the velocities before and
// after the step. For constant force this is exact, and it keeps momentum and
// energy within tight tolerances over millions of steps.
//
//	scene := physics.NewScene()
//	a := scene.AddBody(physics.NewBody(geom.Rect(geom.Zero, 2, 2), 10, physics.Black))
//	b := scene.AddBody(physics.NewBody(geom.Rect(geom.Vec(30, 20), 2, 2), 30, physics.Black))
//	scene.AddGravity(1e3, a, b)
//	for i := 0; i < steps; i++ {
//	    scene.Tick(1e-6)
//	}
//
// # Preconditions
//
// Invalid masses, degenerate shapes and bad indices are programmer errors and
// panic with an error wrapping one of the sentinel values in errors.go.
//
// # Thread Safety
//
// Scene and Body are NOT safe for concurrent use.
package physics
