package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/vecmath"
)

func addBody(t *testing.T, s *System, pos, vel vecmath.Vec3, mass float64) int {
	t.Helper()
	id, err := s.AddRigidbody(pos, vel, mass, vecmath.Identity3())
	if err != nil {
		t.Fatalf("add body: %v", err)
	}
	return id
}

func normTolerance() float64 {
	if vecmath.SqrtBackend == "fast" {
		return 1e-5
	}
	return 1e-9
}

func TestAddRigidbody_IndicesAndLengths(t *testing.T) {
	s := NewSystem(withCapacity(8))

	for want := 0; want < 5; want++ {
		id := addBody(t, s, vecmath.V3(float64(want), 0, 0), vecmath.Vec3{}, 1)
		if id != want {
			t.Errorf("expected index %d, got %d", want, id)
		}
		if s.Store().Len() != want+1 {
			t.Errorf("expected len %d, got %d", want+1, s.Store().Len())
		}
		if err := s.Store().CheckConsistency(); err != nil {
			t.Fatalf("after add %d: %v", want, err)
		}
	}
}

func TestAddRigidbody_InitialState(t *testing.T) {
	s := NewSystem(withCapacity(1))
	pos := vecmath.V3(1, 2, 3)
	vel := vecmath.V3(4, 5, 6)
	id, err := s.AddRigidbody(pos, vel, 4, vecmath.Diag3(2, 4, 8))
	if err != nil {
		t.Fatal(err)
	}
	st := s.Store()

	if st.PrevPositions().At(id) != pos {
		t.Errorf("prev position = %v, want %v", st.PrevPositions().At(id), pos)
	}
	if st.Orientations().At(id) != vecmath.QuatIdentity() {
		t.Errorf("orientation = %v, want identity", st.Orientations().At(id))
	}
	if st.AngularVelocities().At(id) != (vecmath.Vec3{}) {
		t.Error("angular velocity must start at zero")
	}
	if st.InvMasses().At(id) != 0.25 {
		t.Errorf("inv mass = %v", st.InvMasses().At(id))
	}
	want := vecmath.Diag3(0.5, 0.25, 0.125)
	if !st.InvInertias().At(id).ApproxEqual(want, 1e-12) {
		t.Errorf("inv inertia = %v", st.InvInertias().At(id))
	}
	if !st.ActiveFlags().At(id) {
		t.Error("body must start active")
	}
}

func TestAddRigidbody_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mass    float64
		inertia vecmath.Mat3
		want    error
	}{
		{"zero mass", 0, vecmath.Identity3(), ErrNonPositiveMass},
		{"negative mass", -1, vecmath.Identity3(), ErrNonPositiveMass},
		{"nan mass", math.NaN(), vecmath.Identity3(), ErrNonPositiveMass},
		{"inf mass", math.Inf(1), vecmath.Identity3(), ErrNonPositiveMass},
		{"zero inertia", 1, vecmath.Mat3{}, ErrSingularInertia},
		{"rank deficient", 1, vecmath.Mat3{{1, 2, 3}, {2, 4, 6}, {0, 0, 1}}, ErrSingularInertia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSystem(withCapacity(2))
			addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)

			id, err := s.AddRigidbody(vecmath.Vec3{}, vecmath.Vec3{}, tt.mass, tt.inertia)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if id != -1 {
				t.Errorf("expected index -1, got %d", id)
			}
			var be *BodyError
			if !errors.As(err, &be) || be.Op != "add" {
				t.Errorf("expected *BodyError for add, got %T", err)
			}
			if s.Store().Len() != 1 {
				t.Errorf("rejected add changed length to %d", s.Store().Len())
			}
			if err := s.Store().CheckConsistency(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestUpdate_RestBodyStaysPut(t *testing.T) {
	for _, in := range []Integrator{NewSemiImplicitEuler(), NewVerlet()} {
		t.Run(in.Name(), func(t *testing.T) {
			s := NewSystem(withCapacity(1), WithIntegrator(in))
			pos := vecmath.V3(1, -2, 3)
			id := addBody(t, s, pos, vecmath.Vec3{}, 3)

			for i := 0; i < 100; i++ {
				s.Update(0.01)
			}

			st := s.Store()
			if st.Positions().At(id) != pos {
				t.Errorf("position drifted to %v", st.Positions().At(id))
			}
			if st.Velocities().At(id) != (vecmath.Vec3{}) {
				t.Errorf("velocity drifted to %v", st.Velocities().At(id))
			}
			if st.Orientations().At(id) != vecmath.QuatIdentity() {
				t.Errorf("orientation drifted to %v", st.Orientations().At(id))
			}
		})
	}
}

func TestUpdate_GravityClosedForm(t *testing.T) {
	const (
		dt    = 0.01
		steps = 100
		mass  = 2.0
		g     = -9.81
	)

	for _, in := range []Integrator{NewSemiImplicitEuler(), NewVerlet()} {
		t.Run(in.Name(), func(t *testing.T) {
			s := NewSystem(withCapacity(1), WithIntegrator(in))
			p0 := vecmath.V3(0, 100, 0)
			id := addBody(t, s, p0, vecmath.Vec3{}, mass)

			for n := 1; n <= steps; n++ {
				s.Store().AccessForces()[id] = vecmath.V3(0, g*mass, 0)
				s.Update(dt)

				want := p0.Y + g*dt*dt*float64(n*(n+1))/2
				got := s.Store().Positions().At(id).Y
				if math.Abs(got-want) > 1e-9 {
					t.Fatalf("step %d: y = %.12f, want %.12f", n, got, want)
				}
			}
		})
	}
}

func TestUpdate_CarriesInitialVelocity(t *testing.T) {
	for _, in := range []Integrator{NewSemiImplicitEuler(), NewVerlet()} {
		t.Run(in.Name(), func(t *testing.T) {
			s := NewSystem(withCapacity(1), WithIntegrator(in))
			id := addBody(t, s, vecmath.Vec3{}, vecmath.V3(2, 0, 0), 1)

			for i := 0; i < 10; i++ {
				s.Update(0.1)
			}

			if got := s.Store().Positions().At(id); math.Abs(got.X-2) > 1e-12 {
				t.Errorf("x = %v, want 2", got.X)
			}
			if got := s.Store().Velocities().At(id); math.Abs(got.X-2) > 1e-12 {
				t.Errorf("v = %v, want 2", got.X)
			}
		})
	}
}

func TestUpdate_CarriesImpulse(t *testing.T) {
	for _, in := range []Integrator{NewSemiImplicitEuler(), NewVerlet()} {
		t.Run(in.Name(), func(t *testing.T) {
			s := NewSystem(withCapacity(1), WithIntegrator(in))
			id := addBody(t, s, vecmath.V3(3, 0, 0), vecmath.Vec3{}, 2)

			for i := 0; i < 5; i++ {
				s.Update(0.1)
			}
			if err := s.ApplyImpulse(id, vecmath.V3(2, 0, 0), vecmath.Vec3{}); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 10; i++ {
				s.Update(0.1)
			}

			st := s.Store()
			if got := st.Positions().At(id).X; math.Abs(got-4) > 1e-12 {
				t.Errorf("x = %v, want 4", got)
			}
			if got := st.Velocities().At(id).X; math.Abs(got-1) > 1e-12 {
				t.Errorf("v = %v, want 1", got)
			}
		})
	}
}

func TestUpdate_VerletVelocityIsCentralDifference(t *testing.T) {
	s := NewSystem(withCapacity(1), WithIntegrator(NewVerlet()))
	id := addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)
	st := s.Store()

	const dt = 0.1
	st.AccessForces()[id] = vecmath.V3(1, 0, 0)
	s.Update(dt)
	st.AccessForces()[id] = vecmath.V3(1, 0, 0)
	s.Update(dt)

	// x0 = 0, x1 = dt², x2 = 3dt²; v2 = (x2 - x0) / 2dt
	want := 3 * dt * dt / (2 * dt)
	if got := st.Velocities().At(id).X; math.Abs(got-want) > 1e-12 {
		t.Errorf("v = %v, want %v", got, want)
	}
	if got := st.PrevPositions().At(id).X; math.Abs(got-dt*dt) > 1e-12 {
		t.Errorf("prev = %v, want %v", got, dt*dt)
	}
}

func TestUpdate_InactiveFrozenThenResumes(t *testing.T) {
	s := NewSystem(withCapacity(2))
	frozen := addBody(t, s, vecmath.Vec3{}, vecmath.V3(1, 0, 0), 1)
	moving := addBody(t, s, vecmath.Vec3{}, vecmath.V3(1, 0, 0), 1)
	st := s.Store()

	st.AccessActive()[frozen] = false
	st.AccessAngularVelocities()[frozen] = vecmath.V3(0, 0, 1)
	before := st.Orientations().At(frozen)

	for i := 0; i < 10; i++ {
		st.AccessForces()[frozen] = vecmath.V3(5, 0, 0)
		s.Update(0.1)
	}

	if got := st.Positions().At(frozen); got != (vecmath.Vec3{}) {
		t.Errorf("inactive body moved to %v", got)
	}
	if got := st.Velocities().At(frozen); got != vecmath.V3(1, 0, 0) {
		t.Errorf("inactive velocity changed to %v", got)
	}
	if st.Orientations().At(frozen) != before {
		t.Error("inactive orientation changed")
	}
	if got := st.Forces().At(frozen); got != vecmath.V3(5, 0, 0) {
		t.Errorf("inactive force accumulator cleared: %v", got)
	}
	if got := st.Positions().At(moving); math.Abs(got.X-1) > 1e-12 {
		t.Errorf("active body x = %v, want 1", got.X)
	}

	st.AccessActive()[frozen] = true
	st.AccessForces()[frozen] = vecmath.Vec3{}
	s.Update(0.1)

	if got := st.Positions().At(frozen); math.Abs(got.X-0.1) > 1e-12 {
		t.Errorf("reactivated body x = %v, want 0.1", got.X)
	}
}

func TestUpdate_NonPositiveDtIsNoop(t *testing.T) {
	for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		s := NewSystem(withCapacity(1))
		id := addBody(t, s, vecmath.Vec3{}, vecmath.V3(1, 0, 0), 1)
		s.Store().AccessForces()[id] = vecmath.V3(1, 0, 0)

		s.Update(dt)

		st := s.Store()
		if st.Positions().At(id) != (vecmath.Vec3{}) {
			t.Errorf("dt=%v moved body", dt)
		}
		if st.Forces().At(id) != vecmath.V3(1, 0, 0) {
			t.Errorf("dt=%v cleared forces", dt)
		}
	}
}

func TestUpdate_ClearsForcesAndTorques(t *testing.T) {
	s := NewSystem(withCapacity(1))
	id := addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)
	st := s.Store()
	st.AccessForces()[id] = vecmath.V3(1, 2, 3)
	st.AccessTorques()[id] = vecmath.V3(3, 2, 1)

	s.Update(0.01)

	if st.Forces().At(id) != (vecmath.Vec3{}) || st.Torques().At(id) != (vecmath.Vec3{}) {
		t.Errorf("accumulators not cleared: f=%v tau=%v", st.Forces().At(id), st.Torques().At(id))
	}
}

func TestUpdate_OrientationStaysUnit(t *testing.T) {
	for _, in := range []Integrator{NewSemiImplicitEuler(), NewVerlet()} {
		t.Run(in.Name(), func(t *testing.T) {
			s := NewSystem(withCapacity(1), WithIntegrator(in))
			id := addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)
			s.Store().AccessAngularVelocities()[id] = vecmath.V3(1, 2, 3)

			tol := normTolerance()
			for i := 0; i < 1000; i++ {
				s.Update(0.01)
				n := s.Store().Orientations().At(id).Norm()
				if math.Abs(n-1) > tol {
					t.Fatalf("step %d: |q| = %.15f", i, n)
				}
			}
			if s.Store().Orientations().At(id) == vecmath.QuatIdentity() {
				t.Error("orientation did not rotate")
			}
		})
	}
}

func TestUpdate_SpinAboutZ(t *testing.T) {
	s := NewSystem(withCapacity(1))
	id := addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)
	s.Store().AccessAngularVelocities()[id] = vecmath.V3(0, 0, math.Pi/2)

	const steps = 10000
	for i := 0; i < steps; i++ {
		s.Update(1.0 / steps)
	}

	// a quarter turn about z maps x onto y
	got := s.Store().Orientations().At(id).Rotate(vecmath.V3(1, 0, 0))
	if !got.ApproxEqual(vecmath.V3(0, 1, 0), 1e-3) {
		t.Errorf("rotated x = %v, want ~(0,1,0)", got)
	}
}

func TestApplyImpulse_Exact(t *testing.T) {
	s := NewSystem(withCapacity(1))
	id, err := s.AddRigidbody(vecmath.V3(1, 1, 1), vecmath.V3(1, 0, 0), 2, vecmath.Diag3(1, 2, 4))
	if err != nil {
		t.Fatal(err)
	}
	st := s.Store()
	pos := st.Positions().At(id)
	q := st.Orientations().At(id)

	impulse := vecmath.V3(0, 4, 0)
	contact := vecmath.V3(1, 0, 0)
	if err := s.ApplyImpulse(id, impulse, contact); err != nil {
		t.Fatal(err)
	}

	if got := st.Velocities().At(id); got != vecmath.V3(1, 2, 0) {
		t.Errorf("velocity = %v, want (1,2,0)", got)
	}
	// cross((1,0,0), (0,4,0)) = (0,0,4); invInertia z = 0.25
	if got := st.AngularVelocities().At(id); !got.ApproxEqual(vecmath.V3(0, 0, 1), 1e-12) {
		t.Errorf("angular velocity = %v, want (0,0,1)", got)
	}
	if st.Positions().At(id) != pos || st.Orientations().At(id) != q {
		t.Error("impulse must not move or rotate the body")
	}
}

func TestApplyImpulse_CentralHasNoSpin(t *testing.T) {
	s := NewSystem(withCapacity(1))
	id := addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)

	if err := s.ApplyImpulse(id, vecmath.V3(3, 0, 0), vecmath.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if got := s.Store().AngularVelocities().At(id); got != (vecmath.Vec3{}) {
		t.Errorf("central impulse produced spin %v", got)
	}
}

func TestApplyImpulse_OutOfRange(t *testing.T) {
	s := NewSystem(withCapacity(1))
	addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)

	for _, idx := range []int{-1, 1, 100} {
		err := s.ApplyImpulse(idx, vecmath.V3(1, 0, 0), vecmath.Vec3{})
		if !errors.Is(err, ErrBodyIndex) {
			t.Errorf("index %d: expected ErrBodyIndex, got %v", idx, err)
		}
	}
}

func TestApplyImpulse_InactiveIsNoop(t *testing.T) {
	s := NewSystem(withCapacity(1))
	id := addBody(t, s, vecmath.Vec3{}, vecmath.Vec3{}, 1)
	s.Store().AccessActive()[id] = false

	if err := s.ApplyImpulse(id, vecmath.V3(1, 0, 0), vecmath.V3(0, 1, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := s.Store()
	if st.Velocities().At(id) != (vecmath.Vec3{}) || st.AngularVelocities().At(id) != (vecmath.Vec3{}) {
		t.Error("impulse changed an inactive body")
	}
}

func TestIntegratorByName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"euler", "euler", true},
		{"semi-implicit-euler", "euler", true},
		{" Verlet ", "verlet", true},
		{"rk4", "", false},
	}

	for _, tt := range tests {
		in, err := IntegratorByName(tt.name)
		if tt.ok != (err == nil) {
			t.Errorf("%q: err = %v", tt.name, err)
			continue
		}
		if tt.ok && in.Name() != tt.want {
			t.Errorf("%q: got %s, want %s", tt.name, in.Name(), tt.want)
		}
	}
}

func TestNewSystem_DefaultIntegrator(t *testing.T) {
	s := NewSystem(WithIntegrator(nil))
	if s.Integrator().Name() != "euler" {
		t.Errorf("default integrator = %s", s.Integrator().Name())
	}
	if cap(s.Store().AccessPositions()) < InitialCapacity {
		t.Error("default store must reserve InitialCapacity rows")
	}
}

func BenchmarkUpdate(b *testing.B) {
	for _, in := range []Integrator{NewSemiImplicitEuler(), NewVerlet()} {
		b.Run(in.Name(), func(b *testing.B) {
			s := NewSystem(WithIntegrator(in))
			for i := 0; i < InitialCapacity; i++ {
				_, _ = s.AddRigidbody(vecmath.V3(float64(i), 0, 0), vecmath.V3(0, 1, 0), 1, vecmath.Identity3())
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Update(1.0 / 60)
			}
		})
	}
}
