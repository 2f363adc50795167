package physics

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/vecmath"
)

var _ = Describe("World", func() {
	var w *World

	BeforeEach(func() {
		w = NewWorld(withCapacity(16))
	})

	Describe("adding bodies", func() {
		It("hands out dense indices from zero", func() {
			for i := 0; i < 4; i++ {
				id, err := w.AddRigidbody(vecmath.V3(float64(i), 0, 0), vecmath.Vec3{}, 1, vecmath.Identity3())
				Expect(err).NotTo(HaveOccurred())
				Expect(id).To(Equal(i))
			}
			Expect(w.Len()).To(Equal(4))
			Expect(w.Data().CheckConsistency()).To(Succeed())
		})

		It("rejects a singular inertia without appending", func() {
			_, err := w.AddRigidbody(vecmath.Vec3{}, vecmath.Vec3{}, 1, vecmath.Diag3(1, 1, 0))
			Expect(err).To(MatchError(ErrSingularInertia))
			Expect(w.Len()).To(BeZero())
		})

		It("rejects a non-positive mass", func() {
			_, err := w.AddRigidbody(vecmath.Vec3{}, vecmath.Vec3{}, 0, vecmath.Identity3())
			Expect(errors.Is(err, ErrNonPositiveMass)).To(BeTrue())
		})
	})

	Describe("Body", func() {
		It("fails for an unknown index", func() {
			_, err := w.Body(3)
			Expect(err).To(MatchError(ErrBodyIndex))
			Expect(err.Error()).To(ContainSubstring("body 3"))
		})
	})

	Context("with a falling body", func() {
		var id int

		BeforeEach(func() {
			var err error
			id, err = w.AddRigidbody(vecmath.V3(0, 10, 0), vecmath.V3(1, 0, 0), 2, vecmath.Diag3(1, 1, 1))
			Expect(err).NotTo(HaveOccurred())
		})

		It("follows the discrete gravity trajectory", func() {
			const dt = 1.0 / 60
			for n := 1; n <= 60; n++ {
				w.Data().AccessForces()[id] = vecmath.V3(0, -9.81*2, 0)
				w.Update(dt)
			}
			pos := w.Data().Positions().At(id)
			Expect(pos.X).To(BeNumerically("~", 1.0, 1e-9))
			Expect(pos.Y).To(BeNumerically("~", 10-9.81*dt*dt*60*61/2, 1e-9))
		})

		It("leaves position alone when an impulse is applied", func() {
			before := w.Data().Positions().At(id)
			Expect(w.ApplyImpulse(id, vecmath.V3(0, 10, 0), vecmath.V3(0.5, 0, 0))).To(Succeed())
			Expect(w.Data().Positions().At(id)).To(Equal(before))
			Expect(w.Data().Velocities().At(id).Y).To(Equal(5.0))
			Expect(w.Data().AngularVelocities().At(id).Z).To(BeNumerically("~", 5.0, 1e-12))
		})

		It("stops moving while inactive", func() {
			w.Data().AccessActive()[id] = false
			w.Update(0.5)
			Expect(w.Data().Positions().At(id)).To(Equal(vecmath.V3(0, 10, 0)))
		})

		It("keeps the orientation normalized while spinning", func() {
			w.Data().AccessAngularVelocities()[id] = vecmath.V3(3, -1, 0.5)
			for i := 0; i < 500; i++ {
				w.Update(0.02)
			}
			Expect(math.Abs(w.Data().Orientations().At(id).Norm() - 1)).To(BeNumerically("<", normTolerance()))
		})
	})

	Context("with the verlet integrator", func() {
		BeforeEach(func() {
			w = NewWorld(withCapacity(1), WithIntegrator(NewVerlet()))
		})

		It("reports its integrator", func() {
			Expect(w.System().Integrator().Name()).To(Equal("verlet"))
		})
	})
})
