package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/vecmath"
)

// Runner drives a physics world through a timed run. Each step it injects
// gravity and controller forces, fires due impulses and integrates.
type Runner struct {
	world       *physics.World
	gravity     vecmath.Vec3
	metrics     []Metric
	observers   []Observer
	controllers []Controller
	impulses    []Impulse
	next        int
	t           float64
}

func New(world *physics.World) *Runner {
	return &Runner{
		world:     world,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)         { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }
func (r *Runner) AddController(c Controller) { r.controllers = append(r.controllers, c) }

func (r *Runner) World() *physics.World { return r.world }

// Time is the simulated time reached so far.
func (r *Runner) Time() float64 { return r.t }

func (r *Runner) SetGravity(g vecmath.Vec3) { r.gravity = g }

// ScheduleImpulse queues an impulse. Impulses scheduled at the same time fire
// in the order they were added.
func (r *Runner) ScheduleImpulse(imp Impulse) {
	r.impulses = append(r.impulses, imp)
	sort.SliceStable(r.impulses[r.next:], func(i, j int) bool {
		return r.impulses[r.next+i].Time < r.impulses[r.next+j].Time
	})
}

// Step advances the world by one dt. Errors from impulses that name an
// unknown body are returned after the step has been taken.
func (r *Runner) Step(dt float64) error {
	st := r.world.Data()
	if r.gravity != (vecmath.Vec3{}) {
		forces := st.AccessForces()
		active := st.ActiveFlags()
		for i, m := range st.Masses().All() {
			if active.At(i) {
				forces[i] = forces[i].Add(r.gravity.Scale(m))
			}
		}
	}

	var errs []error
	for _, c := range r.controllers {
		if err := c.Apply(r.world, r.t); err != nil {
			errs = append(errs, fmt.Errorf("controller at t=%.4f: %w", r.t, err))
		}
	}
	for r.next < len(r.impulses) && r.impulses[r.next].Time < r.t+dt/2 {
		imp := r.impulses[r.next]
		if err := r.world.ApplyImpulse(imp.Body, imp.Impulse, imp.Contact); err != nil {
			errs = append(errs, fmt.Errorf("impulse at t=%.4f: %w", imp.Time, err))
		}
		r.next++
	}

	r.world.Update(dt)
	r.t += dt
	return errors.Join(errs...)
}

func (r *Runner) reset(cfg Config) {
	r.gravity = cfg.Gravity
	// Impulses queued after a previous run sit unsorted behind the fired ones.
	sort.SliceStable(r.impulses, func(i, j int) bool {
		return r.impulses[i].Time < r.impulses[j].Time
	})
	r.next = 0
	r.t = 0
	for _, m := range r.metrics {
		m.Reset()
	}
	for _, c := range r.controllers {
		if rc, ok := c.(interface{ Reset() }); ok {
			rc.Reset()
		}
	}
}

func (r *Runner) observe() {
	st := r.world.Data()
	for _, m := range r.metrics {
		m.Observe(st, r.t)
	}
	for _, obs := range r.observers {
		obs.OnStep(st, r.t)
	}
}

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	r.reset(cfg)

	steps := cfg.Steps()
	every := max(cfg.SampleEvery, 1)
	result := &Result{
		Times:   make([]float64, 0, steps/every+2),
		Frames:  make([]Frame, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	record := func() {
		result.Times = append(result.Times, r.t)
		result.Frames = append(result.Frames, Snapshot(r.world.Data(), r.t))
	}

	r.observe()
	record()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := r.Step(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, err)
		}
		result.StepsTaken++

		if cfg.ValidateState {
			if body, ok := firstInvalid(r.world.Data()); !ok {
				result.Errors = append(result.Errors, SimError{
					Time: r.t, Step: i, Body: body, Message: "invalid state (NaN/Inf)",
				})
				record()
				break
			}
		}

		r.observe()
		if (i+1)%every == 0 || i == steps-1 {
			record()
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps like Run but records nothing; callback sees the store
// before every step and stops the run by returning false.
func (r *Runner) RunWithCallback(ctx context.Context, cfg Config, callback func(*physics.Store, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	r.reset(cfg)

	steps := cfg.Steps()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(r.world.Data(), r.t) {
			return nil
		}
		if err := r.Step(cfg.Dt); err != nil {
			return err
		}
		r.observe()

		if cfg.ValidateState {
			if body, ok := firstInvalid(r.world.Data()); !ok {
				return SimError{Time: r.t, Step: i, Body: body, Message: "invalid state (NaN/Inf)"}
			}
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	if !cfg.Gravity.IsFinite() {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidConfig)
	}
	return nil
}

func firstInvalid(s *physics.Store) (int, bool) {
	for i, p := range s.Positions().All() {
		if !p.IsFinite() {
			return i, false
		}
	}
	return -1, true
}
