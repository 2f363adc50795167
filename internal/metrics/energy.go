package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

// KineticEnergyOf sums linear and rotational kinetic energy over active bodies.
func KineticEnergyOf(s *physics.Store) float64 {
	mass, vel := s.Masses(), s.Velocities()
	inertia, omega := s.Inertias(), s.AngularVelocities()

	total := 0.0
	for i, on := range s.ActiveFlags().All() {
		if !on {
			continue
		}
		v := vel.At(i)
		w := omega.At(i)
		total += 0.5*mass.At(i)*v.LengthSq() + 0.5*w.Dot(inertia.At(i).MulVec(w))
	}
	return total
}

// PotentialEnergyOf is the energy of active bodies in a uniform field g,
// measured from the origin.
func PotentialEnergyOf(s *physics.Store, g vecmath.Vec3) float64 {
	mass, pos := s.Masses(), s.Positions()

	total := 0.0
	for i, on := range s.ActiveFlags().All() {
		if on {
			total -= mass.At(i) * g.Dot(pos.At(i))
		}
	}
	return total
}

type KineticEnergy struct {
	name    string
	sum     float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(s *physics.Store, t float64) {
	k.sum += KineticEnergyOf(s)
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.sum / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.sum = 0
	k.samples = 0
}

// EnergyDrift tracks the largest relative change of total mechanical energy
// from the first observation.
type EnergyDrift struct {
	name          string
	gravity       vecmath.Vec3
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity vecmath.Vec3) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *physics.Store, t float64) {
	energy := KineticEnergyOf(s) + PotentialEnergyOf(s, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
