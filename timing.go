package morph

import (
	"math"

	"github.com/tanema/gween/ease"
)

// springFrequency is the natural angular frequency of the spring stage, in
// radians per unit of normalized time.
const springFrequency = 10.0

// TimingCurve is the easing shared by every timeline of a transition: a
// cubic bezier through (0,0), (X1,Y1), (X2,Y2), (1,1) whose output drives a
// damped spring step response. Both stages map 0 to 0 and 1 to 1.
type TimingCurve struct {
	x1, y1, x2, y2 float64
	damping        float64
	norm           float64
}

// NewTimingCurve builds the curve described by cfg. A non-positive damping
// ratio is treated as critically damped.
func NewTimingCurve(cfg TimingConfig) *TimingCurve {
	c := &TimingCurve{
		x1: clamp01(cfg.X1), y1: cfg.Y1,
		x2: clamp01(cfg.X2), y2: cfg.Y2,
		damping: cfg.Damping,
	}
	if c.damping <= 0 {
		c.damping = 1
	}
	c.norm = c.springRaw(1)
	if c.norm == 0 {
		c.norm = 1
	}
	return c
}

// At returns eased progress for linear progress t. t is clamped to [0, 1];
// At(0) is 0 and At(1) is 1.
func (c *TimingCurve) At(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return c.spring(c.bezier(t))
}

// Ease adapts the curve to gween's easing signature.
func (c *TimingCurve) Ease() ease.TweenFunc {
	return func(t, b, ch, d float32) float32 {
		if d <= 0 {
			return b + ch
		}
		return b + ch*float32(c.At(float64(t/d)))
	}
}

// bezier solves x(s) = t for the curve parameter s and returns y(s).
func (c *TimingCurve) bezier(t float64) float64 {
	s := t
	for range 8 {
		x := cubic(c.x1, c.x2, s) - t
		if math.Abs(x) < 1e-7 {
			return cubic(c.y1, c.y2, s)
		}
		dx := cubicDerivative(c.x1, c.x2, s)
		if math.Abs(dx) < 1e-6 {
			break
		}
		s -= x / dx
	}
	// Newton stalled; fall back to bisection.
	lo, hi := 0.0, 1.0
	s = t
	for range 50 {
		x := cubic(c.x1, c.x2, s)
		if math.Abs(x-t) < 1e-7 {
			break
		}
		if x < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return cubic(c.y1, c.y2, s)
}

// cubic evaluates one coordinate of a bezier with end points 0 and 1.
func cubic(p1, p2, s float64) float64 {
	u := 1 - s
	return 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s
}

func cubicDerivative(p1, p2, s float64) float64 {
	u := 1 - s
	return 3*u*u*p1 + 6*u*s*(p2-p1) + 3*s*s*(1-p2)
}

// spring returns the normalized step response at u.
func (c *TimingCurve) spring(u float64) float64 {
	return c.springRaw(u) / c.norm
}

// springRaw is the unit step response of a spring with the curve's damping
// ratio, starting at rest.
func (c *TimingCurve) springRaw(u float64) float64 {
	w := springFrequency
	z := c.damping
	switch {
	case z == 1:
		return 1 - (1+w*u)*math.Exp(-w*u)
	case z < 1:
		wd := w * math.Sqrt(1-z*z)
		return 1 - math.Exp(-z*w*u)*(math.Cos(wd*u)+z*w/wd*math.Sin(wd*u))
	default:
		r := w * math.Sqrt(z*z-1)
		r1 := -z*w + r
		r2 := -z*w - r
		return 1 - (r2*math.Exp(r1*u)-r1*math.Exp(r2*u))/(r2-r1)
	}
}
