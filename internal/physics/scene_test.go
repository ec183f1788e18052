package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
)

var _ = Describe("Scene", func() {
	var scene *physics.Scene

	BeforeEach(func() {
		scene = physics.NewScene()
	})

	Describe("bodies", func() {
		It("hands out stable handles in insertion order", func() {
			a := scene.AddBody(square(geom.Zero, 1))
			b := scene.AddBody(square(geom.Vec(10, 0), 1))
			c := scene.AddBody(square(geom.Vec(20, 0), 1))

			Expect(scene.BodyCount()).To(Equal(3))
			Expect(scene.IDAt(1)).To(Equal(b))

			scene.RemoveBody(0)
			Expect(scene.BodyCount()).To(Equal(2))
			Expect(scene.IDAt(0)).To(Equal(b))

			i, ok := scene.IndexOf(c)
			Expect(ok).To(BeTrue())
			Expect(i).To(Equal(1))

			_, ok = scene.Body(a)
			Expect(ok).To(BeFalse())
			_, ok = scene.IndexOf(a)
			Expect(ok).To(BeFalse())
		})

		It("never reuses a handle", func() {
			a := scene.AddBody(square(geom.Zero, 1))
			scene.RemoveBody(0)
			b := scene.AddBody(square(geom.Zero, 1))
			Expect(b).NotTo(Equal(a))
		})

		It("refuses a body that already has a scene", func() {
			body := square(geom.Zero, 1)
			scene.AddBody(body)
			other := physics.NewScene()
			Expect(panicErr(func() { other.AddBody(body) })).To(MatchError(physics.ErrBodyOwned))
		})

		It("lets a removed body join another scene", func() {
			body := square(geom.Zero, 1)
			scene.AddBody(body)
			scene.RemoveBody(0)
			Expect(panicErr(func() { physics.NewScene().AddBody(body) })).To(BeNil())
		})

		It("panics on out-of-range indices", func() {
			scene.AddBody(square(geom.Zero, 1))
			Expect(panicErr(func() { scene.BodyAt(1) })).To(MatchError(physics.ErrIndexOutOfRange))
			Expect(panicErr(func() { scene.RemoveBody(-1) })).To(MatchError(physics.ErrIndexOutOfRange))
			Expect(panicErr(func() { scene.RemoveForce(0) })).To(MatchError(physics.ErrIndexOutOfRange))
		})
	})

	Describe("force bindings", func() {
		var a, b physics.BodyID

		BeforeEach(func() {
			a = scene.AddBody(square(geom.Zero, 100))
			b = scene.AddBody(square(geom.Vec(10, 0), 100))
		})

		It("runs generators in registration order before any body moves", func() {
			var order []string
			var seen geom.Vector
			scene.AddForceFunc(func(s *physics.Scene) {
				order = append(order, "first")
				body, _ := s.Body(a)
				seen = body.Centroid()
			}, nil, a)
			scene.AddForceFunc(func(*physics.Scene) { order = append(order, "second") }, nil)

			scene.BodyAt(0).SetVelocity(geom.Vec(1, 0))
			scene.Tick(1)

			Expect(order).To(Equal([]string{"first", "second"}))
			Expect(seen).To(Equal(geom.Zero))
		})

		It("releases a binding when it is removed", func() {
			released := 0
			scene.AddForceFunc(func(*physics.Scene) {}, func() { released++ })
			scene.RemoveForce(0)
			Expect(released).To(Equal(1))
			Expect(scene.ForceCount()).To(BeZero())
		})

		It("drops and releases bindings that reference a removed body", func() {
			released := 0
			scene.AddSpring(1, a, b)
			scene.AddDrag(0.5, b)
			scene.AddForceFunc(func(*physics.Scene) {}, func() { released++ }, a)
			scene.AddForceFunc(func(*physics.Scene) {}, func() { released++ })

			scene.RemoveBody(0)

			Expect(released).To(Equal(1))
			Expect(scene.ForceCount()).To(Equal(2))
			Expect(scene.ForceAt(0)).To(BeAssignableToTypeOf(&physics.Drag{}))
			Expect(func() { scene.Tick(0.1) }).NotTo(Panic())
		})

		It("panics when a generator names an unknown body", func() {
			scene.AddForceGenerator(&physics.Drag{Gamma: 1, Body: 999})
			Expect(panicErr(func() { scene.Tick(0.1) })).To(MatchError(physics.ErrUnknownBody))
		})

		It("releases everything on Close", func() {
			released := 0
			for i := 0; i < 3; i++ {
				scene.AddForceFunc(func(*physics.Scene) {}, func() { released++ })
			}
			body := scene.BodyAt(0)
			scene.Close()

			Expect(released).To(Equal(3))
			Expect(scene.BodyCount()).To(BeZero())
			Expect(scene.ForceCount()).To(BeZero())
			Expect(panicErr(func() { physics.NewScene().AddBody(body) })).To(BeNil())
		})
	})

	Describe("single step closed forms", func() {
		var a, b physics.BodyID

		BeforeEach(func() {
			a = scene.AddBody(square(geom.Zero, 100))
			b = scene.AddBody(square(geom.Vec(10, 0), 100))
		})

		DescribeTable("pulls two bodies 10 apart together at unit speed",
			func(add func()) {
				add()
				scene.Tick(1)

				bodyA, _ := scene.Body(a)
				bodyB, _ := scene.Body(b)
				Expect(bodyA.Velocity()).To(Equal(geom.Vec(1, 0)))
				Expect(bodyB.Velocity()).To(Equal(geom.Vec(-1, 0)))
				Expect(bodyA.Centroid().IsClose(geom.Vec(0.5, 0))).To(BeTrue())
				Expect(bodyB.Centroid().IsClose(geom.Vec(9.5, 0))).To(BeTrue())
			},
			Entry("gravity G=1", func() { scene.AddGravity(1, a, b) }),
			Entry("spring k=10", func() { scene.AddSpring(10, a, b) }),
		)

		It("skips gravity inside the closeness radius", func() {
			scene.BodyAt(1).SetCentroid(geom.Vec(physics.Closeness-0.5, 0))
			scene.AddGravity(1e6, a, b)
			scene.Tick(1)
			Expect(scene.BodyAt(0).Velocity()).To(Equal(geom.Zero))
			Expect(scene.BodyAt(1).Velocity()).To(Equal(geom.Zero))
		})

		It("refuses gravity on an anchor", func() {
			anchor := scene.AddBody(square(geom.Vec(20, 0), physics.InfiniteMass))
			Expect(panicErr(func() { scene.AddGravity(1, a, anchor) })).To(MatchError(physics.ErrInvalidMass))
			Expect(panicErr(func() { scene.AddGravity(1, anchor, b) })).To(MatchError(physics.ErrInvalidMass))
			Expect(scene.ForceCount()).To(BeZero())
		})

		It("applies drag against the velocity", func() {
			scene.BodyAt(0).SetVelocity(geom.Vec(2, -4))
			scene.AddDrag(50, a)
			scene.Tick(1)
			// v = v0 - γ/m·v0·dt = v0/2
			Expect(scene.BodyAt(0).Velocity()).To(Equal(geom.Vec(1, -2)))
		})
	})

	Describe("TickNoForces", func() {
		It("does not run generators", func() {
			calls := 0
			scene.AddBody(square(geom.Zero, 1))
			scene.AddForceFunc(func(*physics.Scene) { calls++ }, nil)
			scene.TickNoForces(1)
			Expect(calls).To(BeZero())
		})
	})

	Describe("Energy and Momentum", func() {
		It("adds spring potential to kinetic energy", func() {
			a := scene.AddBody(square(geom.Zero, 2))
			b := scene.AddBody(square(geom.Vec(3, 4), 2))
			scene.BodyAt(0).SetVelocity(geom.Vec(1, 0))
			scene.AddSpring(2, a, b)

			Expect(scene.KineticEnergy()).To(BeNumerically("~", 1, 1e-12))
			Expect(scene.PotentialEnergy()).To(BeNumerically("~", 25, 1e-9))
			Expect(scene.Energy()).To(BeNumerically("~", 26, 1e-9))
			Expect(scene.Momentum()).To(Equal(geom.Vec(2, 0)))
		})

		It("ignores anchors", func() {
			scene.AddBody(square(geom.Zero, physics.InfiniteMass))
			Expect(scene.KineticEnergy()).To(BeZero())
			Expect(scene.Momentum()).To(Equal(geom.Zero))
		})
	})
})

var _ = Describe("Bounds", func() {
	bounds := physics.Bounds{Min: geom.Vec(-10, -10), Max: geom.Vec(10, 10)}

	It("reflects an outbound velocity scaled by elasticity", func() {
		b := square(geom.Vec(9.5, 0), 1)
		b.SetVelocity(geom.Vec(4, 1))
		b.SetElasticity(geom.Vec(0.5, 1))

		Expect(bounds.Reflect(b)).To(BeTrue())
		Expect(b.Velocity()).To(Equal(geom.Vec(-2, 1)))
	})

	It("leaves a body heading back inside alone", func() {
		b := square(geom.Vec(9.5, 0), 1)
		b.SetVelocity(geom.Vec(-4, 0))
		b.SetElasticity(geom.Vec(1, 1))
		Expect(bounds.Reflect(b)).To(BeFalse())
		Expect(b.Velocity()).To(Equal(geom.Vec(-4, 0)))
	})

	It("reports containment", func() {
		Expect(bounds.Contains(geom.Vec(0, 10))).To(BeTrue())
		Expect(bounds.Contains(geom.Vec(0, 10.1))).To(BeFalse())
	})
})
