package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
)

var _ = Describe("Body", func() {
	Describe("NewBody", func() {
		It("computes the centroid and starts at rest", func() {
			b := square(geom.Vec(3, -2), 5)
			Expect(b.Centroid().IsClose(geom.Vec(3, -2))).To(BeTrue())
			Expect(b.Velocity()).To(Equal(geom.Zero))
			Expect(b.Force()).To(Equal(geom.Zero))
			Expect(b.Impulse()).To(Equal(geom.Zero))
			Expect(b.Angle()).To(BeZero())
			Expect(b.Area()).To(BeNumerically("~", 4, 1e-12))
		})

		It("copies the shape it is given", func() {
			shape := geom.Rect(geom.Zero, 2, 2)
			b := physics.NewBody(shape, 1, physics.White)
			shape[0] = geom.Vec(100, 100)
			Expect(b.Shape()[0]).To(Equal(geom.Vec(-1, -1)))
		})

		It("rewinds a clockwise shape so the centroid is not mirrored", func() {
			cw := []geom.Vector{{X: 4, Y: 1}, {X: 6, Y: 1}, {X: 6, Y: -1}, {X: 4, Y: -1}}
			b := physics.NewBody(cw, 1, physics.White)
			Expect(b.Centroid().IsClose(geom.Vec(5, 0))).To(BeTrue())
			Expect(geom.IsCounterClockwise(b.Vertices())).To(BeTrue())
			Expect(b.Area()).To(BeNumerically("~", 4, 1e-12))
			Expect(cw[0]).To(Equal(geom.Vec(4, 1)))
		})

		It("accepts small bodies regardless of unit scale", func() {
			b := physics.NewBody(geom.Rect(geom.Zero, 1e-4, 1e-4), 1e-9, physics.White)
			Expect(b.Centroid().IsClose(geom.Zero)).To(BeTrue())
			Expect(b.Area()).To(BeNumerically("~", 1e-8, 1e-16))
		})

		DescribeTable("rejects invalid input",
			func(shape []geom.Vector, mass float64, want error) {
				err := panicErr(func() { physics.NewBody(shape, mass, physics.Black) })
				Expect(err).To(MatchError(want))
			},
			Entry("two vertices", []geom.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}}, 1.0, physics.ErrTooFewVertices),
			Entry("collinear vertices", []geom.Vector{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, 1.0, physics.ErrDegeneratePolygon),
			Entry("axis aligned vertices", []geom.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 5, Y: 0}}, 1.0, physics.ErrDegeneratePolygon),
			Entry("rect collapsed far from the origin", geom.Rect(geom.Vec(1e6, 0), 1e-12, 1), 1.0, physics.ErrDegeneratePolygon),
			Entry("zero mass", geom.Rect(geom.Zero, 1, 1), 0.0, physics.ErrInvalidMass),
			Entry("negative mass", geom.Rect(geom.Zero, 1, 1), -3.0, physics.ErrInvalidMass),
			Entry("NaN mass", geom.Rect(geom.Zero, 1, 1), math.NaN(), physics.ErrInvalidMass),
		)

		It("accepts infinite mass", func() {
			b := square(geom.Zero, physics.InfiniteMass)
			Expect(b.IsAnchor()).To(BeTrue())
		})

		It("rejects a bad mass through SetMass", func() {
			b := square(geom.Zero, 1)
			Expect(panicErr(func() { b.SetMass(0) })).To(MatchError(physics.ErrInvalidMass))
			Expect(b.Mass()).To(Equal(1.0))
		})
	})

	Describe("Translate and SetCentroid", func() {
		It("moves every vertex with the centroid", func() {
			b := square(geom.Zero, 1)
			b.Translate(geom.Vec(5, 7))
			Expect(b.Centroid()).To(Equal(geom.Vec(5, 7)))
			Expect(geom.Centroid(b.Shape()).IsClose(b.Centroid())).To(BeTrue())
			Expect(b.Area()).To(BeNumerically("~", 4, 1e-12))

			b.SetCentroid(geom.Vec(-1, 0.5))
			Expect(b.Centroid()).To(Equal(geom.Vec(-1, 0.5)))
			Expect(geom.Centroid(b.Shape()).IsClose(geom.Vec(-1, 0.5))).To(BeTrue())
		})
	})

	Describe("SetRotation", func() {
		It("rotates about the centroid to an absolute angle", func() {
			b := square(geom.Vec(4, 4), 1)
			b.SetRotation(math.Pi / 4)

			Expect(b.Angle()).To(Equal(math.Pi / 4))
			Expect(b.Centroid()).To(Equal(geom.Vec(4, 4)))
			Expect(b.Area()).To(BeNumerically("~", 4, 1e-9))
			// corner (3,3) sits √2 from the centroid and ends up straight below it
			Expect(b.Shape()[0].IsClose(geom.Vec(4, 4-math.Sqrt2))).To(BeTrue())
		})

		It("does nothing when the angle is unchanged", func() {
			b := square(geom.Zero, 1)
			b.SetRotation(1)
			before := b.Shape()
			b.SetRotation(1)
			Expect(b.Shape()).To(Equal(before))
		})

		It("applies only the difference from the stored angle", func() {
			a := square(geom.Zero, 1)
			a.SetRotation(math.Pi / 6)
			a.SetRotation(math.Pi / 2)

			b := square(geom.Zero, 1)
			b.SetRotation(math.Pi / 2)

			for i, v := range a.Shape() {
				Expect(v.IsClose(b.Shape()[i])).To(BeTrue(), "vertex %d", i)
			}
		})
	})

	Describe("Tick", func() {
		It("moves by the average velocity and clears the accumulators", func() {
			b := square(geom.Zero, 2)
			b.SetVelocity(geom.Vec(1, 0))
			b.AddForce(geom.Vec(4, 0))
			b.AddImpulse(geom.Vec(0, 2))
			b.Tick(0.5)

			// vNew = (1,0) + (2,0)*0.5 + (0,1) = (2,1); vAvg = (1.5,0.5)
			Expect(b.Velocity()).To(Equal(geom.Vec(2, 1)))
			Expect(b.Centroid().IsClose(geom.Vec(0.75, 0.25))).To(BeTrue())
			Expect(b.Force()).To(Equal(geom.Zero))
			Expect(b.Impulse()).To(Equal(geom.Zero))
		})

		It("is exact for a constant force", func() {
			b := square(geom.Zero, 2)
			g := geom.Vec(0, -9.81)
			for i := 0; i < 100; i++ {
				b.AddForce(g.Scale(b.Mass()))
				b.Tick(0.01)
			}
			Expect(b.Centroid().Y).To(BeNumerically("~", -0.5*9.81, 1e-9))
			Expect(b.Velocity().Y).To(BeNumerically("~", -9.81, 1e-9))
		})

		It("keeps anchors still but clears their accumulators", func() {
			b := square(geom.Vec(1, 1), physics.InfiniteMass)
			b.AddForce(geom.Vec(1e9, 0))
			b.AddImpulse(geom.Vec(0, 1e9))
			b.Tick(1)

			Expect(b.Centroid()).To(Equal(geom.Vec(1, 1)))
			Expect(b.Velocity()).To(Equal(geom.Zero))
			Expect(b.Force()).To(Equal(geom.Zero))
			Expect(b.Impulse()).To(Equal(geom.Zero))
		})

		It("leaves a body at rest with no force exactly where it was", func() {
			b := physics.NewBody(geom.Star(5, 10, geom.Vec(2, 3)), 3, physics.Black)
			before := b.Shape()
			c := b.Centroid()
			for i := 0; i < 1000; i++ {
				b.Tick(0.01)
			}
			Expect(b.Shape()).To(Equal(before))
			Expect(b.Centroid()).To(Equal(c))
		})
	})

	Describe("TickNoForces", func() {
		It("integrates velocity and acceleration and ignores the accumulators", func() {
			b := square(geom.Zero, 1)
			b.SetVelocity(geom.Vec(1, 0))
			b.SetAcceleration(geom.Vec(0, 2))
			b.AddForce(geom.Vec(100, 100))
			b.TickNoForces(1)

			Expect(b.Centroid().IsClose(geom.Vec(1, 1))).To(BeTrue())
			Expect(b.Velocity()).To(Equal(geom.Vec(1, 2)))
			Expect(b.Force()).To(Equal(geom.Vec(100, 100)))
		})

		It("does not move anchors", func() {
			b := square(geom.Zero, physics.InfiniteMass)
			b.SetVelocity(geom.Vec(1, 1))
			b.TickNoForces(1)
			Expect(b.Centroid()).To(Equal(geom.Zero))
		})
	})
})
