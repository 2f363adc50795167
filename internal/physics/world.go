package physics

import "github.com/san-kum/rigidsim/internal/vecmath"

// World is the entry point for callers: it owns one System and forwards to
// it.
type World struct {
	system *System
}

func NewWorld(opts ...Option) *World {
	return &World{system: NewSystem(opts...)}
}

func (w *World) AddRigidbody(position, velocity vecmath.Vec3, mass float64, inertia vecmath.Mat3) (int, error) {
	return w.system.AddRigidbody(position, velocity, mass, inertia)
}

// Update advances the world by dt seconds.
func (w *World) Update(dt float64) {
	w.system.Update(dt)
}

func (w *World) ApplyImpulse(index int, impulse, contact vecmath.Vec3) error {
	return w.system.ApplyImpulse(index, impulse, contact)
}

// Data returns the body store for reading results and injecting forces.
func (w *World) Data() *Store { return w.system.Store() }

func (w *World) System() *System { return w.system }

func (w *World) Len() int { return w.system.Store().Len() }

// Body returns a handle for body i.
func (w *World) Body(i int) (Body, error) {
	st := w.system.Store()
	if !st.Valid(i) {
		return Body{}, &BodyError{Op: "body", Index: i, Err: ErrBodyIndex}
	}
	return Body{store: st, index: i}, nil
}
