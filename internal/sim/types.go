package sim

import (
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

type Metric interface {
	Name() string
	Observe(s *physics.Store, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *physics.Store, t float64)
}

// Controller adds actuation forces to the world before each step. Controllers
// that also implement Reset are reset at the start of every Run.
type Controller interface {
	Apply(w *physics.World, t float64) error
}

type Config struct {
	Dt       float64
	Duration float64
	Gravity  vecmath.Vec3
	// SampleEvery records a frame every N steps; 0 or 1 records all of them.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      5,
		Gravity:       vecmath.V3(0, -9.81, 0),
		SampleEvery:   1,
		ValidateState: true,
	}
}

// Steps returns the number of whole steps that fit in Duration.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}

// Impulse is applied to Body at the step nearest to Time.
type Impulse struct {
	Time    float64
	Body    int
	Impulse vecmath.Vec3
	Contact vecmath.Vec3
}

type BodyState struct {
	Position        vecmath.Vec3
	Velocity        vecmath.Vec3
	AngularVelocity vecmath.Vec3
	Orientation     vecmath.Quat
	Active          bool
}

type Frame struct {
	Time   float64
	Bodies []BodyState
}

// Snapshot copies the current state of every body in s.
func Snapshot(s *physics.Store, t float64) Frame {
	n := s.Len()
	f := Frame{Time: t, Bodies: make([]BodyState, n)}
	pos, vel := s.Positions(), s.Velocities()
	ang, rot, act := s.AngularVelocities(), s.Orientations(), s.ActiveFlags()
	for i := 0; i < n; i++ {
		f.Bodies[i] = BodyState{
			Position:        pos.At(i),
			Velocity:        vel.At(i),
			AngularVelocity: ang.At(i),
			Orientation:     rot.At(i),
			Active:          act.At(i),
		}
	}
	return f
}

type Result struct {
	Times      []float64
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded frame, or a zero Frame if none was taken.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}
