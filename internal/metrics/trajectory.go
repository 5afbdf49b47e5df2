package metrics

import (
	"math"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Defaults returns a fresh set of every trajectory metric.
func Defaults() []dynamo.Metric {
	return []dynamo.Metric{
		NewApex(),
		NewRange(),
		NewFlightTime(),
		NewMaxSpeed(),
		NewValidity(),
	}
}

// Apex tracks the highest altitude reached.
type Apex struct {
	max     float64
	samples int
}

func NewApex() *Apex { return &Apex{} }

func (a *Apex) Name() string { return "apex" }

func (a *Apex) Observe(p dynamo.Projectile, t float64) {
	if !p.IsValid() {
		return
	}
	if a.samples == 0 || p.Position.Y > a.max {
		a.max = p.Position.Y
	}
	a.samples++
}

func (a *Apex) Value() float64 { return a.max }

func (a *Apex) Reset() {
	a.max = 0
	a.samples = 0
}

// groundCrossing finds the first descent through y = 0, interpolating
// linearly between the bracketing samples.
type groundCrossing struct {
	prev     dynamo.Projectile
	prevT    float64
	seen     bool
	crossed  bool
	crossX   float64
	crossT   float64
	lastX    float64
	lastTime float64
}

func (g *groundCrossing) observe(p dynamo.Projectile, t float64) {
	if !p.IsValid() || g.crossed {
		return
	}
	if g.seen && g.prev.Position.Y >= 0 && p.Position.Y < 0 {
		frac := g.prev.Position.Y / (g.prev.Position.Y - p.Position.Y)
		g.crossX = g.prev.Position.X + frac*(p.Position.X-g.prev.Position.X)
		g.crossT = g.prevT + frac*(t-g.prevT)
		g.crossed = true
	}
	g.prev, g.prevT, g.seen = p, t, true
	g.lastX, g.lastTime = p.Position.X, t
}

func (g *groundCrossing) reset() { *g = groundCrossing{} }

// Range is the horizontal distance at the first ground crossing, or the
// last finite x when the projectile never comes down.
type Range struct{ g groundCrossing }

func NewRange() *Range { return &Range{} }

func (r *Range) Name() string                           { return "range" }
func (r *Range) Observe(p dynamo.Projectile, t float64) { r.g.observe(p, t) }
func (r *Range) Reset()                                 { r.g.reset() }

func (r *Range) Value() float64 {
	if r.g.crossed {
		return r.g.crossX
	}
	return r.g.lastX
}

// FlightTime is the time of the first ground crossing, or the last finite
// sample time when there is none.
type FlightTime struct{ g groundCrossing }

func NewFlightTime() *FlightTime { return &FlightTime{} }

func (f *FlightTime) Name() string                           { return "flight_time" }
func (f *FlightTime) Observe(p dynamo.Projectile, t float64) { f.g.observe(p, t) }
func (f *FlightTime) Reset()                                 { f.g.reset() }

func (f *FlightTime) Value() float64 {
	if f.g.crossed {
		return f.g.crossT
	}
	return f.g.lastTime
}

type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(p dynamo.Projectile, t float64) {
	if !p.IsValid() {
		return
	}
	m.max = math.Max(m.max, p.Velocity.Norm())
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

// Validity is the fraction of observed states that were finite.
type Validity struct {
	invalid int
	samples int
}

func NewValidity() *Validity { return &Validity{} }

func (v *Validity) Name() string { return "valid_fraction" }

func (v *Validity) Observe(p dynamo.Projectile, t float64) {
	v.samples++
	if !p.IsValid() {
		v.invalid++
	}
}

func (v *Validity) Value() float64 {
	if v.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(v.invalid)/float64(v.samples)
}

func (v *Validity) Reset() {
	v.invalid = 0
	v.samples = 0
}
