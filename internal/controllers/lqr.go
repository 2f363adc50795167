package controllers

import (
	"math"

	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

// LQR is full state feedback on position and velocity, applied per axis:
// F = -K[0](p - Target) - K[1]v.
type LQR struct {
	Body     int
	K        [2]float64
	Target   vecmath.Vec3
	MaxForce float64
}

func NewLQR(body int, k [2]float64, target vecmath.Vec3) *LQR {
	return &LQR{Body: body, K: k, Target: target}
}

// NewDoubleIntegratorLQR returns the optimal gains for a free body of the
// given mass under the cost ∫ q|p-Target|² + r|a|² dt, where a = F/m.
func NewDoubleIntegratorLQR(body int, mass, q, r float64, target vecmath.Vec3) *LQR {
	w := math.Sqrt(q / r)
	k := [2]float64{mass * w, mass * math.Sqrt(2*w)}
	return NewLQR(body, k, target)
}

func (l *LQR) Compute(pos, vel vecmath.Vec3) vecmath.Vec3 {
	u := pos.Sub(l.Target).Scale(-l.K[0]).Sub(vel.Scale(l.K[1]))
	return clampNorm(u, l.MaxForce)
}

func (l *LQR) Apply(w *physics.World, t float64) error {
	b, err := w.Body(l.Body)
	if err != nil {
		return err
	}
	if !b.Active() {
		return nil
	}
	b.AddForce(l.Compute(b.Position(), b.Velocity()))
	return nil
}
