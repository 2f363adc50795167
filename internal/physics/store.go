package physics

import (
	"iter"
	"unsafe"

	"github.com/san-kum/rigidsim/internal/vecmath"
)

const (
	// InitialCapacity is the number of rows reserved up front. It is a hint;
	// the store grows past it.
	InitialCapacity = 10_000

	// CacheLineSize is the boundary the backing arrays are placed on when
	// the allocation allows it.
	CacheLineSize = 64
)

// View is a read-only window onto one per-body slice.
type View[T any] struct {
	s []T
}

func (v View[T]) Len() int { return len(v.s) }

// At returns the element for body i. It panics if i is out of range.
func (v View[T]) At(i int) T { return v.s[i] }

// All iterates over (index, value) pairs.
func (v View[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, x := range v.s {
			if !yield(i, x) {
				return
			}
		}
	}
}

// Slice returns a copy of the underlying data.
func (v View[T]) Slice() []T {
	c := make([]T, len(v.s))
	copy(c, v.s)
	return c
}

// Store holds every body as one row across parallel slices. Index i refers
// to the same body in every slice, and rows are never removed.
type Store struct {
	positions         []vecmath.Vec3 // world space
	prevPositions     []vecmath.Vec3 // world space, previous step
	velocities        []vecmath.Vec3 // world space, m/s
	angularVelocities []vecmath.Vec3 // body space, rad/s
	orientations      []vecmath.Quat // body to world
	forces            []vecmath.Vec3 // world space
	torques           []vecmath.Vec3 // body space
	kicks             []vecmath.Vec3 // velocity change not yet seen by the integrator

	masses      []float64
	invMasses   []float64
	inertias    []vecmath.Mat3 // body space
	invInertias []vecmath.Mat3 // body space

	active []bool
}

func newStore(capacity int) *Store {
	return &Store{
		positions:         makeAligned[vecmath.Vec3](capacity),
		prevPositions:     makeAligned[vecmath.Vec3](capacity),
		velocities:        makeAligned[vecmath.Vec3](capacity),
		angularVelocities: makeAligned[vecmath.Vec3](capacity),
		orientations:      makeAligned[vecmath.Quat](capacity),
		forces:            makeAligned[vecmath.Vec3](capacity),
		torques:           makeAligned[vecmath.Vec3](capacity),
		kicks:             makeAligned[vecmath.Vec3](capacity),
		masses:            makeAligned[float64](capacity),
		invMasses:         makeAligned[float64](capacity),
		inertias:          makeAligned[vecmath.Mat3](capacity),
		invInertias:       makeAligned[vecmath.Mat3](capacity),
		active:            makeAligned[bool](capacity),
	}
}

// makeAligned returns an empty slice with the given capacity whose first
// element sits on a CacheLineSize boundary if one is reachable inside the
// padded allocation.
func makeAligned[T any](capacity int) []T {
	var zero T
	size := unsafe.Sizeof(zero)
	if capacity <= 0 || size == 0 {
		return make([]T, 0, capacity)
	}

	pad := CacheLineSize
	buf := make([]T, capacity+pad)
	for off := 0; off < pad; off++ {
		if uintptr(unsafe.Pointer(&buf[off]))%CacheLineSize == 0 {
			return buf[off:off:off+capacity]
		}
	}
	return buf[:0:capacity]
}

func (s *Store) push(pos, vel vecmath.Vec3, mass float64, inertia, invInertia vecmath.Mat3) int {
	idx := len(s.positions)

	s.positions = append(s.positions, pos)
	s.prevPositions = append(s.prevPositions, pos)
	s.velocities = append(s.velocities, vel)
	s.angularVelocities = append(s.angularVelocities, vecmath.Vec3{})
	s.orientations = append(s.orientations, vecmath.QuatIdentity())
	s.forces = append(s.forces, vecmath.Vec3{})
	s.torques = append(s.torques, vecmath.Vec3{})
	s.kicks = append(s.kicks, vel)
	s.masses = append(s.masses, mass)
	s.invMasses = append(s.invMasses, 1/mass)
	s.inertias = append(s.inertias, inertia)
	s.invInertias = append(s.invInertias, invInertia)
	s.active = append(s.active, true)

	return idx
}

// Len returns the number of bodies ever added.
func (s *Store) Len() int { return len(s.positions) }

// Valid reports whether i names a body in the store.
func (s *Store) Valid(i int) bool { return i >= 0 && i < len(s.positions) }

// CheckConsistency returns ErrInconsistentStore if any per-body slice has a
// different length from the position slice.
func (s *Store) CheckConsistency() error {
	n := len(s.positions)
	lens := [...]int{
		len(s.prevPositions), len(s.velocities), len(s.angularVelocities),
		len(s.orientations), len(s.forces), len(s.torques), len(s.kicks),
		len(s.masses), len(s.invMasses), len(s.inertias), len(s.invInertias),
		len(s.active),
	}
	for _, l := range lens {
		if l != n {
			return ErrInconsistentStore
		}
	}
	return nil
}

func (s *Store) Positions() View[vecmath.Vec3]         { return View[vecmath.Vec3]{s.positions} }
func (s *Store) PrevPositions() View[vecmath.Vec3]     { return View[vecmath.Vec3]{s.prevPositions} }
func (s *Store) Velocities() View[vecmath.Vec3]        { return View[vecmath.Vec3]{s.velocities} }
func (s *Store) AngularVelocities() View[vecmath.Vec3] { return View[vecmath.Vec3]{s.angularVelocities} }
func (s *Store) Orientations() View[vecmath.Quat]      { return View[vecmath.Quat]{s.orientations} }
func (s *Store) Forces() View[vecmath.Vec3]            { return View[vecmath.Vec3]{s.forces} }
func (s *Store) Torques() View[vecmath.Vec3]           { return View[vecmath.Vec3]{s.torques} }
func (s *Store) Masses() View[float64]                 { return View[float64]{s.masses} }
func (s *Store) InvMasses() View[float64]              { return View[float64]{s.invMasses} }
func (s *Store) Inertias() View[vecmath.Mat3]          { return View[vecmath.Mat3]{s.inertias} }
func (s *Store) InvInertias() View[vecmath.Mat3]       { return View[vecmath.Mat3]{s.invInertias} }
func (s *Store) ActiveFlags() View[bool]               { return View[bool]{s.active} }

// The Access methods hand out the backing slices for in-place mutation.
// Writing elements is fine; changing a slice's length breaks the row
// invariant and is the caller's responsibility.

func (s *Store) AccessPositions() []vecmath.Vec3         { return s.positions }
func (s *Store) AccessPrevPositions() []vecmath.Vec3     { return s.prevPositions }
func (s *Store) AccessVelocities() []vecmath.Vec3        { return s.velocities }
func (s *Store) AccessAngularVelocities() []vecmath.Vec3 { return s.angularVelocities }
func (s *Store) AccessOrientations() []vecmath.Quat      { return s.orientations }
func (s *Store) AccessForces() []vecmath.Vec3            { return s.forces }
func (s *Store) AccessTorques() []vecmath.Vec3           { return s.torques }
func (s *Store) AccessActive() []bool                    { return s.active }
