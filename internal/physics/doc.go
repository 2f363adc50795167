// Package physics provides the rigid-body core: a structure-of-arrays body
// store and the system that advances it each fixed timestep.
//
//   - [Store]: per-body slices (position, velocity, orientation, mass, ...)
//   - [System]: add bodies, integrate, apply impulses, clear forces
//   - [World]: facade owning one [System]; the embedding seam
//   - [Body]: index handle with frame transforms and force helpers
//
// # Example
//
//	w := physics.NewWorld()
//	id, err := w.AddRigidbody(vecmath.V3(0, 10, 0), vecmath.Vec3{}, 2, vecmath.Diag3(1, 1, 1))
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < 60; i++ {
//	    w.Data().AccessForces()[id] = vecmath.V3(0, -9.81*2, 0)
//	    w.Update(1.0 / 60)
//	}
//	pos := w.Data().Positions().At(id)
//
// # Thread Safety
//
// Nothing here is safe for concurrent use. Update must not run while bodies
// are being added or while another goroutine mutates the Access slices.
package physics
