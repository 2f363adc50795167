package physics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/vecmath"
)

// System owns the body store and advances it.
type System struct {
	store      *Store
	integrator Integrator
}

type Option func(*System)

// WithIntegrator replaces the default semi-implicit Euler integrator.
// A nil integrator is ignored.
func WithIntegrator(in Integrator) Option {
	return func(s *System) {
		if in != nil {
			s.integrator = in
		}
	}
}

// withCapacity overrides the reserved row count. Used by tests and benchmarks.
func withCapacity(n int) Option {
	return func(s *System) {
		s.store = newStore(n)
	}
}

func NewSystem(opts ...Option) *System {
	s := &System{integrator: NewSemiImplicitEuler()}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = newStore(InitialCapacity)
	}
	return s
}

func (s *System) Store() *Store { return s.store }

func (s *System) Integrator() Integrator { return s.integrator }

// AddRigidbody appends a body and returns its index. The body starts active
// at identity orientation with zero angular velocity, force and torque.
// Nothing is appended when an error is returned.
func (s *System) AddRigidbody(position, velocity vecmath.Vec3, mass float64, inertia vecmath.Mat3) (int, error) {
	if !(mass > 0) || math.IsInf(mass, 1) {
		return -1, &BodyError{Op: "add", Index: -1, Err: ErrNonPositiveMass}
	}
	invInertia, ok := inertia.Inverse()
	if !ok {
		return -1, &BodyError{Op: "add", Index: -1, Err: ErrSingularInertia}
	}
	return s.store.push(position, velocity, mass, inertia, invInertia), nil
}

// Update integrates every active body by dt and then clears their force and
// torque accumulators. A dt that is not positive leaves the store untouched.
func (s *System) Update(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}
	s.integrator.Integrate(s.store, dt)
	s.clearForces()
}

// ApplyImpulse changes the velocity and angular velocity of body index by an
// instantaneous impulse applied at contact, an offset from the center of
// mass. Inactive bodies are left as they are.
func (s *System) ApplyImpulse(index int, impulse, contact vecmath.Vec3) error {
	st := s.store
	if !st.Valid(index) {
		return &BodyError{Op: "impulse", Index: index, Err: ErrBodyIndex}
	}
	if !st.active[index] {
		return nil
	}
	dv := impulse.Scale(st.invMasses[index])
	st.velocities[index] = st.velocities[index].Add(dv)
	st.kicks[index] = st.kicks[index].Add(dv)
	dw := st.invInertias[index].MulVec(contact.Cross(impulse))
	st.angularVelocities[index] = st.angularVelocities[index].Add(dw)
	return nil
}

func (s *System) clearForces() {
	st := s.store
	for i, on := range st.active {
		if !on {
			continue
		}
		st.forces[i] = vecmath.Vec3{}
		st.torques[i] = vecmath.Vec3{}
	}
}
