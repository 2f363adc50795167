package metrics

import (
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

// Momentum reports the magnitude of total linear momentum at the last
// observation.
type Momentum struct {
	name string
	last float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(s *physics.Store, t float64) {
	var p vecmath.Vec3
	mass, vel := s.Masses(), s.Velocities()
	for i, on := range s.ActiveFlags().All() {
		if on {
			p = p.Add(vel.At(i).Scale(mass.At(i)))
		}
	}
	m.last = p.Length()
}

func (m *Momentum) Value() float64 { return m.last }

func (m *Momentum) Reset() { m.last = 0 }

// SpinRate is the mean angular speed of active bodies, averaged over samples.
type SpinRate struct {
	name    string
	sum     float64
	samples int
}

func NewSpinRate() *SpinRate {
	return &SpinRate{name: "spin_rate"}
}

func (r *SpinRate) Name() string { return r.name }

func (r *SpinRate) Observe(s *physics.Store, t float64) {
	omega := s.AngularVelocities()
	total, n := 0.0, 0
	for i, on := range s.ActiveFlags().All() {
		if on {
			total += omega.At(i).Length()
			n++
		}
	}
	if n > 0 {
		r.sum += total / float64(n)
	}
	r.samples++
}

func (r *SpinRate) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *SpinRate) Reset() {
	r.sum = 0
	r.samples = 0
}
