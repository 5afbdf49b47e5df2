package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/physics"
)

var rifle = dynamo.Environment{Caliber: 0.00762, BallisticCoefficient: 0.4}

var _ = Describe("DragForce", func() {
	It("is zero at rest", func() {
		Expect(physics.DragForce(0, 0.00762, 0.4)).To(BeZero())
	})

	DescribeTable("is never positive",
		func(speed, caliber, bc float64) {
			Expect(physics.DragForce(speed, caliber, bc)).To(BeNumerically("<=", 0))
		},
		Entry("slow rifle round", 1.0, 0.00762, 0.4),
		Entry("muzzle speed", 850.0, 0.00762, 0.4),
		Entry("large caliber", 300.0, 0.02, 0.9),
		Entry("tiny coefficient", 10.0, 0.005, 0.01),
	)

	It("grows stronger with speed", func() {
		prev := physics.DragForce(0, 0.00762, 0.4)
		for speed := 1.0; speed <= 1000; speed += 7.5 {
			d := physics.DragForce(speed, 0.00762, 0.4)
			Expect(d).To(BeNumerically("<=", prev))
			prev = d
		}
	})

	It("matches the closed form", func() {
		k := 1 / (0.4 * 0.00762 * 0.00762)
		Expect(physics.DragForce(100, 0.00762, 0.4)).To(BeNumerically("~", -0.5*k*1.225*100*100, 1e-3))
	})

	It("diverges for a zero caliber", func() {
		d := physics.DragForce(10, 0, 0.4)
		Expect(math.IsInf(d, -1)).To(BeTrue())
	})
})

var _ = Describe("UpdateVelocity", func() {
	It("leaves a projectile at rest untouched", func() {
		envs := []dynamo.Environment{
			rifle,
			{Wind: 5, Caliber: 0.01, BallisticCoefficient: 0.2},
			{Wind: -3, Caliber: 0, BallisticCoefficient: 0},
		}
		for _, env := range envs {
			for _, dt := range []float64{0.01, 1, 10} {
				p := dynamo.Projectile{Position: dynamo.Vec2{X: 3, Y: 4}}
				physics.UpdateVelocity(&p, dt, env)
				Expect(p.Velocity).To(Equal(dynamo.Vec2{}))
				Expect(p.Position).To(Equal(dynamo.Vec2{X: 3, Y: 4}))
			}
		}
	})

	It("applies wind as a horizontal acceleration", func() {
		env := dynamo.Environment{Wind: 2, Caliber: 1e3, BallisticCoefficient: 1e3}
		p := dynamo.Projectile{Velocity: dynamo.Vec2{X: 0, Y: 1}}
		physics.UpdateVelocity(&p, 0.5, env)
		Expect(p.Velocity.X).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("follows constant gravity when drag is negligible", func() {
		env := dynamo.Environment{Caliber: 1, BallisticCoefficient: 1e12}
		vy0, dt, n := 10.0, 0.01, 200
		p := dynamo.Projectile{Velocity: dynamo.Vec2{Y: vy0}}
		for i := 0; i < n; i++ {
			p = physics.Step(p, dt, env)
		}
		Expect(p.Velocity.Y).To(BeNumerically("~", vy0-physics.Gravity*float64(n)*dt, 1e-6))
		Expect(p.Velocity.X).To(BeZero())
	})
})

var _ = Describe("UpdatePosition", func() {
	It("moves by velocity times dt", func() {
		p := dynamo.Projectile{
			Position: dynamo.Vec2{X: 1, Y: 2},
			Velocity: dynamo.Vec2{X: 10, Y: -4},
		}
		physics.UpdatePosition(&p, 0.5)
		Expect(p.Position).To(Equal(dynamo.Vec2{X: 6, Y: 0}))
		Expect(p.Velocity).To(Equal(dynamo.Vec2{X: 10, Y: -4}))
	})
})

var _ = Describe("Step", func() {
	It("moves with the updated velocity", func() {
		env := dynamo.Environment{Wind: 1, Caliber: 0.05, BallisticCoefficient: 0.5}
		start := dynamo.Projectile{Velocity: dynamo.Vec2{X: 20, Y: 15}}
		dt := 0.01

		next := start
		physics.UpdateVelocity(&next, dt, env)
		Expect(next.Velocity).NotTo(Equal(start.Velocity))

		stepped := physics.Step(start, dt, env)
		Expect(stepped.Velocity).To(Equal(next.Velocity))
		Expect(stepped.Position.X).To(Equal(next.Velocity.X * dt))
		Expect(stepped.Position.Y).To(Equal(next.Velocity.Y * dt))
		Expect(stepped.Position.X).NotTo(Equal(start.Velocity.X * dt))
	})

	It("does not mutate its argument", func() {
		p := physics.Launch(30)
		before := p
		_ = physics.Step(p, physics.DefaultDt, rifle)
		Expect(p).To(Equal(before))
	})

	It("is deterministic", func() {
		env := dynamo.Environment{Wind: 0.3, Caliber: 20, BallisticCoefficient: 0.9}
		a, b := physics.Launch(12), physics.Launch(12)
		for i := 0; i < 500; i++ {
			a = physics.Step(a, physics.DefaultDt, env)
			b = physics.Step(b, physics.DefaultDt, env)
		}
		Expect(a.IsValid()).To(BeTrue())
		Expect(a).To(Equal(b))
	})

	It("is bit-for-bit deterministic after diverging", func() {
		a, b := physics.Launch(45), physics.Launch(45)
		for i := 0; i < 20; i++ {
			a = physics.Step(a, physics.DefaultDt, rifle)
			b = physics.Step(b, physics.DefaultDt, rifle)
		}
		Expect(a.IsValid()).To(BeFalse())
		Expect(bits(a)).To(Equal(bits(b)))
	})
})

var _ = Describe("Launch", func() {
	It("fires flat at zero elevation", func() {
		p := physics.Launch(0)
		Expect(p.Velocity).To(Equal(dynamo.Vec2{X: 850, Y: 0}))
		Expect(p.Position).To(Equal(dynamo.Vec2{}))
	})

	It("fires straight up at ninety degrees", func() {
		p := physics.Launch(90)
		Expect(p.Velocity.X).To(BeNumerically("~", 0, 1e-9))
		Expect(p.Velocity.Y).To(BeNumerically("~", 850, 1e-9))
		Expect(p.Position).To(Equal(dynamo.Vec2{}))
	})

	It("splits evenly at forty-five degrees", func() {
		p := physics.Launch(45)
		Expect(p.Velocity.X).To(BeNumerically("~", 850/math.Sqrt2, 1e-9))
		Expect(p.Velocity.Y).To(BeNumerically("~", 850/math.Sqrt2, 1e-9))
	})
})

var _ = Describe("rifle regression fixture", func() {
	// 45 degrees, no wind, 7.62 mm, bc 0.4, dt 0.01. Drag at muzzle speed is
	// about 1.9e10 m/s^2, so the first step flips the velocity and the state
	// overflows a few steps later.
	var states []dynamo.Projectile

	BeforeEach(func() {
		p := physics.Launch(45)
		states = states[:0]
		for i := 0; i < 100; i++ {
			p = physics.Step(p, 0.01, rifle)
			states = append(states, p)
		}
	})

	It("reverses the velocity on the first step", func() {
		first := states[0]
		Expect(first.Velocity.X).To(BeNumerically("~", -134727755.64679295, 1e-1))
		Expect(first.Velocity.Y).To(BeNumerically("~", -134727755.74489293, 1e-1))
		Expect(first.Position.X).To(BeNumerically("~", -1347277.5564679296, 1e-3))
		Expect(first.Position.Y).To(BeNumerically("~", -1347277.5574489292, 1e-3))
	})

	It("reproduces the finite steps exactly", func() {
		// literal launch velocity so the pinned values depend only on the
		// step arithmetic, not on the platform's cos/sin rounding
		start := dynamo.Projectile{Velocity: dynamo.Vec2{X: 601.0407640085655, Y: 601.0407640085654}}
		launched := physics.Launch(45)
		Expect(launched.Velocity.X).To(BeNumerically("~", start.Velocity.X, 1e-9))
		Expect(launched.Velocity.Y).To(BeNumerically("~", start.Velocity.Y, 1e-9))

		want := []dynamo.Projectile{
			{Position: dynamo.Vec2{X: -1347277.5564679303, Y: -1347277.55744893}, Velocity: dynamo.Vec2{X: -134727755.64679304, Y: -134727755.744893}},
			{Position: dynamo.Vec2{X: 6.7696358417050184e+16, Y: 6.769635846634227e+16}, Velocity: dynamo.Vec2{X: 6.769635841839746e+18, Y: 6.769635846768955e+18}},
			{Position: dynamo.Vec2{X: -1.7091562668596386e+38, Y: -1.709156268104135e+38}, Velocity: dynamo.Vec2{X: -1.7091562668596385e+40, Y: -1.709156268104135e+40}},
			{Position: dynamo.Vec2{X: 1.0894685566746462e+81, Y: 1.0894685574679264e+81}, Velocity: dynamo.Vec2{X: 1.0894685566746463e+83, Y: 1.0894685574679264e+83}},
			{Position: dynamo.Vec2{X: -4.426704764873357e+166, Y: -4.426704768096596e+166}, Velocity: dynamo.Vec2{X: -4.426704764873357e+168, Y: -4.426704768096596e+168}},
		}

		p := start
		for i, w := range want {
			p = physics.Step(p, 0.01, rifle)
			Expect(p).To(Equal(w), "step %d", i)
		}
		p = physics.Step(p, 0.01, rifle)
		Expect(p.IsValid()).To(BeFalse())
	})

	It("stays finite for five steps then becomes NaN", func() {
		for i := 0; i < 5; i++ {
			Expect(states[i].IsValid()).To(BeTrue(), "step %d", i)
		}
		for i := 5; i < len(states); i++ {
			Expect(states[i].IsValid()).To(BeFalse(), "step %d", i)
		}
		final := states[len(states)-1]
		Expect(math.IsNaN(final.Position.X)).To(BeTrue())
		Expect(math.IsNaN(final.Position.Y)).To(BeTrue())
	})
})

func bits(p dynamo.Projectile) [4]uint64 {
	var out [4]uint64
	for i, v := range p.Row() {
		out[i] = math.Float64bits(v)
	}
	return out
}
