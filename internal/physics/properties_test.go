package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
)

const (
	longSteps = 1_000_000
	longDt    = 1e-6
)

var _ = Describe("Long-run properties", func() {
	var scene *physics.Scene

	BeforeEach(func() {
		skipIfShort()
		scene = physics.NewScene()
	})

	AfterEach(func() {
		if scene != nil {
			scene.Close()
		}
	})

	DescribeTable("conserves momentum",
		func(add func(a, b physics.BodyID)) {
			a := scene.AddBody(square(geom.Zero, 10))
			b := scene.AddBody(square(geom.Vec(30, 20), 30))
			scene.BodyAt(0).SetVelocity(geom.Vec(3, -1))
			scene.BodyAt(1).SetVelocity(geom.Vec(-1, 1))
			add(a, b)

			p0 := scene.Momentum()
			worst := 0.0
			for i := 0; i < longSteps; i++ {
				scene.Tick(longDt)
				worst = math.Max(worst, scene.Momentum().Sub(p0).Len())
			}
			Expect(worst).To(BeNumerically("<", 1e-6))
		},
		Entry("under gravity", func(a, b physics.BodyID) { scene.AddGravity(1e3, a, b) }),
		Entry("under a spring", func(a, b physics.BodyID) { scene.AddSpring(10, a, b) }),
	)

	It("conserves spring energy", func() {
		a := scene.AddBody(square(geom.Zero, 10))
		b := scene.AddBody(square(geom.Vec(10, 0), 10))
		scene.BodyAt(0).SetVelocity(geom.Vec(0, -5))
		scene.BodyAt(1).SetVelocity(geom.Vec(0, 5))
		scene.AddSpring(10, a, b)

		e0 := scene.Energy()
		Expect(e0).To(BeNumerically("~", 750, 1e-9))
		for i := 0; i < longSteps; i++ {
			scene.Tick(longDt)
		}
		Expect(math.Abs(scene.Energy()-e0) / e0).To(BeNumerically("<", 1e-5))
	})

	It("decays speed exponentially under drag", func() {
		const (
			gamma = 1.0
			mass  = 10.0
		)
		v0 := geom.Vec(3, 4)
		id := scene.AddBody(square(geom.Zero, mass))
		body := scene.BodyAt(0)
		body.SetVelocity(v0)
		scene.AddDrag(gamma, id)

		prev := v0
		firstRise, firstFlip := -1, -1
		for i := 0; i < longSteps; i++ {
			scene.Tick(longDt)
			v := body.Velocity()
			if firstRise < 0 && v.Len() >= prev.Len() {
				firstRise = i
			}
			if firstFlip < 0 && (math.Signbit(v.X) != math.Signbit(v0.X) || math.Signbit(v.Y) != math.Signbit(v0.Y)) {
				firstFlip = i
			}
			prev = v
		}
		Expect(firstRise).To(Equal(-1), "speed did not decrease at step %d", firstRise)
		Expect(firstFlip).To(Equal(-1), "velocity changed sign at step %d", firstFlip)

		t := float64(longSteps) * longDt
		want := v0.Len() * math.Exp(-gamma*t/mass)
		Expect(body.Velocity().Len()).To(BeNumerically("~", want, 1e-6))
	})

	It("keeps a circular orbit about a heavy body", func() {
		const (
			g     = 1.0
			heavy = 1e6
			r0    = 100.0
			dt    = 1e-4
			steps = 200_000
		)
		sun := scene.AddBody(square(geom.Zero, heavy))
		planet := scene.AddBody(square(geom.Vec(r0, 0), 1))
		scene.BodyAt(1).SetVelocity(geom.Vec(0, math.Sqrt(g*(heavy+1)/r0)))
		scene.AddGravity(g, sun, planet)

		worst := 0.0
		for i := 0; i < steps; i++ {
			scene.Tick(dt)
			r := scene.BodyAt(0).Centroid().Distance(scene.BodyAt(1).Centroid())
			worst = math.Max(worst, math.Abs(r-r0)/r0)
		}
		Expect(worst).To(BeNumerically("<", 1e-2))
	})

	It("oscillates against an anchor without moving it", func() {
		const (
			k    = 10.0
			mass = 10.0
			amp  = 10.0
			dt   = 5e-6
		)
		anchor := scene.AddBody(square(geom.Zero, physics.InfiniteMass))
		bob := scene.AddBody(square(geom.Vec(amp, 0), mass))
		scene.AddSpring(k, anchor, bob)

		e0 := scene.Energy()
		steps := 200_000
		for i := 0; i < steps; i++ {
			scene.Tick(dt)
		}

		t := float64(steps) * dt
		omega := math.Sqrt(k / mass)
		Expect(scene.BodyAt(0).Centroid()).To(Equal(geom.Zero))
		Expect(scene.BodyAt(1).Centroid().X).To(BeNumerically("~", amp*math.Cos(omega*t), 1e-3))
		Expect(math.Abs(scene.Energy()-e0) / e0).To(BeNumerically("<", 1e-5))
	})
})
