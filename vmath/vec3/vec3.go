package vec3

import (
	"math"
	"math/rand"
)

// T is a point, direction, or linear RGB color.
type T [3]float64

func (v T) Norm() float64 {
	return math.Sqrt(v.NormSquared())
}

func (v T) NormSquared() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// NearZero reports whether every component is within 1e-8 of zero.
func (v T) NearZero() bool {
	const s = 1e-8
	return math.Abs(v[0]) < s && math.Abs(v[1]) < s && math.Abs(v[2]) < s
}

// Normalize returns v scaled to unit length.  v must not be zero.
func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// MulVV is the component-wise product, used to attenuate colors.
func MulVV(a, b T) T {
	return T{
		a[0] * b[0],
		a[1] * b[1],
		a[2] * b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

func Neg(a T) T {
	return T{-a[0], -a[1], -a[2]}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Lerp interpolates linearly from a (t=0) to b (t=1).
func Lerp(t float64, a, b T) T {
	return AddVV(MulVS(a, 1.0-t), MulVS(b, t))
}

// Reflect mirrors a about the plane with unit normal n.
func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// Refract bends the unit vector uv through a surface with unit normal n
// according to Snell's law.  etaRatio is eta_incident / eta_transmitted.
func Refract(uv, n T, etaRatio float64) T {
	cosTheta := math.Min(IProd(Neg(uv), n), 1.0)
	outPerp := MulVS(AddVV(uv, MulVS(n, cosTheta)), etaRatio)
	outParallel := MulVS(n, -math.Sqrt(math.Abs(1.0-outPerp.NormSquared())))
	return AddVV(outPerp, outParallel)
}

func Random(rng *rand.Rand) T {
	return T{rng.Float64(), rng.Float64(), rng.Float64()}
}

func RandomRange(rng *rand.Rand, lo, hi float64) T {
	return T{
		lo + (hi-lo)*rng.Float64(),
		lo + (hi-lo)*rng.Float64(),
		lo + (hi-lo)*rng.Float64(),
	}
}

// UniformUnitDistribution draws a direction uniformly from the unit sphere.
//
// Candidates are drawn from the enclosing cube and rejected until one lands
// inside the ball.  Candidates too close to the origin are also rejected, so
// that normalizing them can't blow up.
func UniformUnitDistribution(rng *rand.Rand) T {
	result := T{}
	for {
		result[0] = 2 * (rng.Float64() - 0.5)
		result[1] = 2 * (rng.Float64() - 0.5)
		result[2] = 2 * (rng.Float64() - 0.5)
		normSquared := result.NormSquared()
		if 1e-160 < normSquared && normSquared <= 1.0 {
			return DivVS(result, math.Sqrt(normSquared))
		}
	}
}

// UnitDiskDistribution draws a point uniformly from the unit disk in the XY
// plane.
func UnitDiskDistribution(rng *rand.Rand) T {
	for {
		p := T{2*rng.Float64() - 1, 2*rng.Float64() - 1, 0}
		if p.NormSquared() < 1.0 {
			return p
		}
	}
}
