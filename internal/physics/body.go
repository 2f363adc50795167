package physics

import "github.com/san-kum/rigidsim/internal/vecmath"

// Body is a handle to one row of a Store. It holds no state of its own and
// stays valid for the life of the store, since rows are never removed.
type Body struct {
	store *Store
	index int
}

func (b Body) Index() int { return b.index }

func (b Body) Position() vecmath.Vec3        { return b.store.positions[b.index] }
func (b Body) Velocity() vecmath.Vec3        { return b.store.velocities[b.index] }
func (b Body) AngularVelocity() vecmath.Vec3 { return b.store.angularVelocities[b.index] }
func (b Body) Orientation() vecmath.Quat     { return b.store.orientations[b.index] }
func (b Body) Mass() float64                 { return b.store.masses[b.index] }
func (b Body) InvMass() float64              { return b.store.invMasses[b.index] }
func (b Body) Force() vecmath.Vec3           { return b.store.forces[b.index] }
func (b Body) Torque() vecmath.Vec3          { return b.store.torques[b.index] }
func (b Body) Active() bool                  { return b.store.active[b.index] }

func (b Body) SetActive(on bool) { b.store.active[b.index] = on }

// TransformDirection rotates a body-local direction into world space.
func (b Body) TransformDirection(dir vecmath.Vec3) vecmath.Vec3 {
	return b.Orientation().Rotate(dir)
}

// InverseTransformDirection rotates a world direction into body space.
func (b Body) InverseTransformDirection(dir vecmath.Vec3) vecmath.Vec3 {
	return b.Orientation().Conjugate().Rotate(dir)
}

// PointVelocity returns the body-local velocity of a point given as an
// offset from the center of mass in body space.
func (b Body) PointVelocity(point vecmath.Vec3) vecmath.Vec3 {
	return b.InverseTransformDirection(b.Velocity()).Add(b.AngularVelocity().Cross(point))
}

// AddForce accumulates a world-space force through the center of mass.
func (b Body) AddForce(force vecmath.Vec3) {
	f := b.store.forces
	f[b.index] = f[b.index].Add(force)
}

// AddRelativeForce accumulates a body-local force through the center of mass.
func (b Body) AddRelativeForce(force vecmath.Vec3) {
	b.AddForce(b.TransformDirection(force))
}

// AddForceAtPoint accumulates a body-local force applied at a body-local
// offset, adding both the linear force and the resulting torque.
func (b Body) AddForceAtPoint(force, point vecmath.Vec3) {
	b.AddRelativeForce(force)
	t := b.store.torques
	t[b.index] = t[b.index].Add(point.Cross(force))
}
