package physics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/rigidsim/internal/vecmath"
)

// Integrator advances every active row of a store by dt. Implementations
// must skip inactive rows, record PrevPositions, consume the pending
// velocity kicks of the rows they advance, and leave Forces and Torques
// untouched; the System clears them afterwards.
type Integrator interface {
	Name() string
	Integrate(s *Store, dt float64)
}

// SemiImplicitEuler updates velocity from force first, then position from
// the new velocity.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "euler" }

func (e *SemiImplicitEuler) Integrate(s *Store, dt float64) {
	pos := s.positions
	prev := s.prevPositions
	vel := s.velocities
	force := s.forces
	invMass := s.invMasses

	for i := range pos {
		if !s.active[i] {
			continue
		}
		vel[i] = vel[i].Add(force[i].Scale(invMass[i] * dt))
		prev[i] = pos[i]
		pos[i] = pos[i].Add(vel[i].Scale(dt))
		s.kicks[i] = vecmath.Vec3{}
	}
	integrateOrientations(s, dt)
}

// Verlet is position Verlet driven by PrevPositions, with velocity rebuilt
// each step as a central difference. Velocity changes made outside the
// integrator (the creation velocity and impulses) are folded in by moving
// PrevPositions back by kick*dt before the step. Writes through
// AccessVelocities bypass the kick record and are overwritten.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Integrate(s *Store, dt float64) {
	pos := s.positions
	prev := s.prevPositions
	vel := s.velocities
	force := s.forces
	invMass := s.invMasses
	kick := s.kicks

	dt2 := dt * dt
	inv2dt := 1 / (2 * dt)

	for i := range pos {
		if !s.active[i] {
			continue
		}
		if kick[i] != (vecmath.Vec3{}) {
			prev[i] = prev[i].Sub(kick[i].Scale(dt))
			kick[i] = vecmath.Vec3{}
		}
		acc := force[i].Scale(invMass[i])
		next := pos[i].Scale(2).Sub(prev[i]).Add(acc.Scale(dt2))
		vel[i] = next.Sub(prev[i]).Scale(inv2dt)
		prev[i] = pos[i]
		pos[i] = next
	}
	integrateOrientations(s, dt)
}

// integrateOrientations applies q += 0.5*(0,w)*q*dt and renormalizes.
// Angular velocity is only changed by impulses; torque is not integrated.
func integrateOrientations(s *Store, dt float64) {
	half := 0.5 * dt
	for i := range s.orientations {
		if !s.active[i] {
			continue
		}
		q := s.orientations[i]
		spin := vecmath.PureQuat(s.angularVelocities[i]).Mul(q).Scale(half)
		q = q.Add(spin)
		q.Normalize()
		s.orientations[i] = q
	}
}

var integrators = map[string]func() Integrator{
	"euler":               func() Integrator { return NewSemiImplicitEuler() },
	"semi-implicit-euler": func() Integrator { return NewSemiImplicitEuler() },
	"verlet":              func() Integrator { return NewVerlet() },
}

// IntegratorByName returns a fresh integrator for name. Matching is case
// insensitive.
func IntegratorByName(name string) (Integrator, error) {
	ctor, ok := integrators[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %q (have %s)", name, strings.Join(IntegratorNames(), ", "))
	}
	return ctor(), nil
}

func IntegratorNames() []string {
	names := make([]string, 0, len(integrators))
	for n := range integrators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
