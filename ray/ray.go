package ray

import (
	"math"

	"harpoon/vmath/vec3"
)

// Span is a closed interval [Lo, Hi] of ray parameters or coordinates.
type Span struct {
	Lo, Hi float64
}

// EmptySpan returns a span that contains nothing.  It is the identity for
// MinContainingSpan.
func EmptySpan() Span {
	return Span{math.Inf(1), math.Inf(-1)}
}

// UniverseSpan returns a span that contains every real number.
func UniverseSpan() Span {
	return Span{math.Inf(-1), math.Inf(1)}
}

// MinContainingSpan returns the smallest span that encloses both a and b.
func MinContainingSpan(a, b Span) Span {
	min := a.Lo
	if b.Lo < a.Lo {
		min = b.Lo
	}

	max := a.Hi
	if b.Hi > a.Hi {
		max = b.Hi
	}

	return Span{min, max}
}

func (s Span) Size() float64 {
	return s.Hi - s.Lo
}

// Contains is the closed membership test.
func (s Span) Contains(x float64) bool {
	return s.Lo <= x && x <= s.Hi
}

// Surrounds is the open membership test.
func (s Span) Surrounds(x float64) bool {
	return s.Lo < x && x < s.Hi
}

func (s Span) Clamp(x float64) float64 {
	if x < s.Lo {
		return s.Lo
	}
	if x > s.Hi {
		return s.Hi
	}
	return x
}

// Expand widens the span by delta, half on each side.
func (s Span) Expand(delta float64) Span {
	padding := delta / 2
	return Span{s.Lo - padding, s.Hi + padding}
}

func (s Span) IsFinite() bool {
	return !math.IsInf(s.Lo, 0) && !math.IsInf(s.Hi, 0)
}

func (s Span) IsEmpty() bool {
	return s.Lo > s.Hi
}

// Ray is a parametric line.  Time places the ray within the shutter
// interval [0, 1] and drives moving geometry.
type Ray struct {
	Point vec3.T
	Slope vec3.T
	Time  float64
}

func (r *Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

// RaySegment is an intersection query: a ray, restricted to the parameter
// span TheSegment.
type RaySegment struct {
	TheRay     Ray
	TheSegment Span
}
