package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/physics"
)

// Containment is the fraction of samples in which every active body stayed
// within radius of the origin.
type Containment struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewContainment(radius float64) *Containment {
	return &Containment{
		name:   "containment",
		radius: radius,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(s *physics.Store, t float64) {
	c.samples++
	pos := s.Positions()
	r2 := c.radius * c.radius
	for i, on := range s.ActiveFlags().All() {
		if on && !(pos.At(i).LengthSq() <= r2) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// OrientationDrift is the largest deviation of any orientation norm from 1.
type OrientationDrift struct {
	name string
	max  float64
}

func NewOrientationDrift() *OrientationDrift {
	return &OrientationDrift{name: "orientation_drift"}
}

func (o *OrientationDrift) Name() string { return o.name }

func (o *OrientationDrift) Observe(s *physics.Store, t float64) {
	for _, q := range s.Orientations().All() {
		o.max = math.Max(o.max, math.Abs(q.Norm()-1))
	}
}

func (o *OrientationDrift) Value() float64 { return o.max }

func (o *OrientationDrift) Reset() { o.max = 0 }
