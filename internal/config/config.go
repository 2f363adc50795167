package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/controllers"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultDuration = 5.0
	DefaultGravity  = -9.81
	DefaultMass     = 1.0
)

var ErrInvalid = errors.New("invalid scenario")

// Vector is a 3-vector written as a YAML sequence.
type Vector [3]float64

func V(x, y, z float64) Vector { return Vector{x, y, z} }

func (v Vector) Vec3() vecmath.Vec3 { return vecmath.V3(v[0], v[1], v[2]) }

func (v Vector) IsZero() bool { return v == Vector{} }

type Config struct {
	Name        string             `yaml:"name"`
	Integrator  string             `yaml:"integrator"`
	Dt          float64            `yaml:"dt"`
	Duration    float64            `yaml:"duration"`
	Gravity     Vector             `yaml:"gravity,flow"`
	SampleEvery int                `yaml:"sample_every,omitempty"`
	Bodies      []BodyConfig       `yaml:"bodies"`
	Impulses    []ImpulseConfig    `yaml:"impulses,omitempty"`
	Controllers []ControllerConfig `yaml:"controllers,omitempty"`
}

// BodyConfig describes one body, or Count copies of it laid out along
// Spacing.
type BodyConfig struct {
	Position        Vector  `yaml:"position,flow"`
	Velocity        Vector  `yaml:"velocity,flow,omitempty"`
	AngularVelocity Vector  `yaml:"angular_velocity,flow,omitempty"`
	Mass            float64 `yaml:"mass"`
	// Inertia is the diagonal of the body-space inertia tensor.
	Inertia Vector `yaml:"inertia,flow,omitempty"`
	// Box derives the inertia of a solid cuboid and takes precedence over
	// Inertia.
	Box     *Vector `yaml:"box,flow,omitempty"`
	Count   int     `yaml:"count,omitempty"`
	Spacing Vector  `yaml:"spacing,flow,omitempty"`
	Active  *bool   `yaml:"active,omitempty"`
}

type ImpulseConfig struct {
	Time    float64 `yaml:"time"`
	Body    int     `yaml:"body"`
	Impulse Vector  `yaml:"impulse,flow"`
	Contact Vector  `yaml:"contact,flow,omitempty"`
}

// ControllerConfig attaches a "pid" or "lqr" controller to one body. An lqr
// controller takes its gains from Q and R.
type ControllerConfig struct {
	Type     string  `yaml:"type"`
	Body     int     `yaml:"body"`
	Target   Vector  `yaml:"target,flow"`
	Kp       float64 `yaml:"kp,omitempty"`
	Ki       float64 `yaml:"ki,omitempty"`
	Kd       float64 `yaml:"kd,omitempty"`
	Q        float64 `yaml:"q,omitempty"`
	R        float64 `yaml:"r,omitempty"`
	MaxForce float64 `yaml:"max_force,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "default",
		Integrator:  "euler",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Gravity:     V(0, DefaultGravity, 0),
		SampleEvery: 1,
		Bodies: []BodyConfig{
			{Position: V(0, 10, 0), Mass: DefaultMass},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Box != nil {
			box := *b.Box
			b.Box = &box
		}
		if b.Active != nil {
			on := *b.Active
			b.Active = &on
		}
		cp.Bodies[i] = b
	}
	cp.Impulses = append([]ImpulseConfig(nil), c.Impulses...)
	cp.Controllers = append([]ControllerConfig(nil), c.Controllers...)
	return &cp
}

// TotalBodies is the number of bodies Build creates.
func (c *Config) TotalBodies() int {
	n := 0
	for _, b := range c.Bodies {
		n += b.count()
	}
	return n
}

// SetBodyCount keeps only the first body group and replicates it n times.
func (c *Config) SetBodyCount(n int) {
	if len(c.Bodies) == 0 {
		c.Bodies = DefaultConfig().Bodies
	}
	c.Bodies = c.Bodies[:1]
	c.Bodies[0].Count = n
	if n > 1 && c.Bodies[0].Spacing.IsZero() {
		c.Bodies[0].Spacing = V(1.5, 0, 0)
	}
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalid, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalid, c.Duration)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative", ErrInvalid)
	}
	if _, err := c.NewIntegrator(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalid)
	}
	for i, b := range c.Bodies {
		if !(b.Mass > 0) {
			return fmt.Errorf("%w: body %d: mass must be positive, got %v", ErrInvalid, i, b.Mass)
		}
		if b.Count < 0 {
			return fmt.Errorf("%w: body %d: count must not be negative", ErrInvalid, i)
		}
		if !b.inertia().IsValid() {
			return fmt.Errorf("%w: body %d: inertia is singular", ErrInvalid, i)
		}
	}
	total := c.TotalBodies()
	for i, imp := range c.Impulses {
		if imp.Body < 0 || imp.Body >= total {
			return fmt.Errorf("%w: impulse %d: body %d out of range [0,%d)", ErrInvalid, i, imp.Body, total)
		}
		if imp.Time < 0 {
			return fmt.Errorf("%w: impulse %d: negative time", ErrInvalid, i)
		}
	}
	for i, cc := range c.Controllers {
		if cc.Body < 0 || cc.Body >= total {
			return fmt.Errorf("%w: controller %d: body %d out of range [0,%d)", ErrInvalid, i, cc.Body, total)
		}
		switch cc.Type {
		case "pid":
		case "lqr":
			if !(cc.Q > 0) || !(cc.R > 0) {
				return fmt.Errorf("%w: controller %d: lqr needs positive q and r", ErrInvalid, i)
			}
		default:
			return fmt.Errorf("%w: controller %d: unknown type %q", ErrInvalid, i, cc.Type)
		}
	}
	return nil
}

// BoxInertia returns the body-space inertia of a solid cuboid with the given
// extents.
func BoxInertia(mass, w, h, d float64) vecmath.Mat3 {
	k := mass / 12
	return vecmath.Diag3(k*(h*h+d*d), k*(w*w+d*d), k*(w*w+h*h))
}

func (b BodyConfig) count() int {
	return max(b.Count, 1)
}

func (b BodyConfig) inertia() vecmath.Mat3 {
	switch {
	case b.Box != nil:
		return BoxInertia(b.Mass, b.Box[0], b.Box[1], b.Box[2])
	case b.Inertia.IsZero():
		return BoxInertia(b.Mass, 1, 1, 1)
	default:
		return vecmath.Diag3(b.Inertia[0], b.Inertia[1], b.Inertia[2])
	}
}

// Build adds every configured body to w and returns their indices in order.
func (c *Config) Build(w *physics.World) ([]int, error) {
	ids := make([]int, 0, c.TotalBodies())
	for gi, b := range c.Bodies {
		inertia := b.inertia()
		for k := 0; k < b.count(); k++ {
			pos := b.Position.Vec3().Add(b.Spacing.Vec3().Scale(float64(k)))
			id, err := w.AddRigidbody(pos, b.Velocity.Vec3(), b.Mass, inertia)
			if err != nil {
				return ids, fmt.Errorf("body group %d: %w", gi, err)
			}
			st := w.Data()
			st.AccessAngularVelocities()[id] = b.AngularVelocity.Vec3()
			if b.Active != nil {
				st.AccessActive()[id] = *b.Active
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *Config) NewIntegrator() (physics.Integrator, error) {
	if c.Integrator == "" {
		return physics.NewSemiImplicitEuler(), nil
	}
	return physics.IntegratorByName(c.Integrator)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Gravity:       c.Gravity.Vec3(),
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
	}
}

func (c *Config) SimImpulses() []sim.Impulse {
	out := make([]sim.Impulse, len(c.Impulses))
	for i, imp := range c.Impulses {
		out[i] = sim.Impulse{
			Time:    imp.Time,
			Body:    imp.Body,
			Impulse: imp.Impulse.Vec3(),
			Contact: imp.Contact.Vec3(),
		}
	}
	return out
}

// NewRunner validates c, builds its world and returns a runner with the
// impulses scheduled.
func (c *Config) NewRunner() (*sim.Runner, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	in, err := c.NewIntegrator()
	if err != nil {
		return nil, err
	}
	w := physics.NewWorld(physics.WithIntegrator(in))
	if _, err := c.Build(w); err != nil {
		return nil, err
	}
	r := sim.New(w)
	for _, imp := range c.SimImpulses() {
		r.ScheduleImpulse(imp)
	}
	ctrls, err := c.NewControllers(w)
	if err != nil {
		return nil, err
	}
	for _, ctrl := range ctrls {
		r.AddController(ctrl)
	}
	return r, nil
}

// NewControllers builds the configured controllers against w, which must
// already hold the bodies.
func (c *Config) NewControllers(w *physics.World) ([]sim.Controller, error) {
	out := make([]sim.Controller, 0, len(c.Controllers))
	for i, cc := range c.Controllers {
		b, err := w.Body(cc.Body)
		if err != nil {
			return nil, fmt.Errorf("controller %d: %w", i, err)
		}
		switch cc.Type {
		case "pid":
			pid := controllers.NewPID(cc.Body, cc.Kp, cc.Ki, cc.Kd, cc.Target.Vec3())
			pid.MaxForce = cc.MaxForce
			out = append(out, pid)
		case "lqr":
			lqr := controllers.NewDoubleIntegratorLQR(cc.Body, b.Mass(), cc.Q, cc.R, cc.Target.Vec3())
			lqr.MaxForce = cc.MaxForce
			out = append(out, lqr)
		default:
			return nil, fmt.Errorf("%w: controller %d: unknown type %q", ErrInvalid, i, cc.Type)
		}
	}
	return out, nil
}
