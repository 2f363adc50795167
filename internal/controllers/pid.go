package controllers

import (
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

// PID steers one body toward Target with a force computed per axis from the
// position error. Inactive bodies are left alone and do not accumulate error.
type PID struct {
	Body     int
	Kp       float64
	Ki       float64
	Kd       float64
	Target   vecmath.Vec3
	MaxForce float64

	integral vecmath.Vec3
	prevErr  vecmath.Vec3
	prevT    float64
	first    bool
}

func NewPID(body int, kp, ki, kd float64, target vecmath.Vec3) *PID {
	return &PID{
		Body:   body,
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Reset() {
	p.integral = vecmath.Vec3{}
	p.prevErr = vecmath.Vec3{}
	p.prevT = 0
	p.first = true
}

// Compute returns the force for a body at pos at time t and updates the
// controller state.
func (p *PID) Compute(pos vecmath.Vec3, t float64) vecmath.Vec3 {
	err := p.Target.Sub(pos)

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return clampNorm(err.Scale(p.Kp), p.MaxForce)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return clampNorm(err.Scale(p.Kp), p.MaxForce)
	}
	p.integral = p.integral.Add(err.Scale(dt))
	derivative := err.Sub(p.prevErr).Scale(1 / dt)
	p.prevErr = err
	p.prevT = t

	u := err.Scale(p.Kp).Add(p.integral.Scale(p.Ki)).Add(derivative.Scale(p.Kd))
	return clampNorm(u, p.MaxForce)
}

func (p *PID) Apply(w *physics.World, t float64) error {
	b, err := w.Body(p.Body)
	if err != nil {
		return err
	}
	if !b.Active() {
		return nil
	}
	b.AddForce(p.Compute(b.Position(), t))
	return nil
}

// clampNorm limits |v| to limit. A non-positive limit disables it.
func clampNorm(v vecmath.Vec3, limit float64) vecmath.Vec3 {
	if limit <= 0 {
		return v
	}
	if l := v.Length(); l > limit {
		return v.Scale(limit / l)
	}
	return v
}
