package aabox

import (
	"harpoon/ray"
	"harpoon/vmath/vec3"
)

// MinThickness is the smallest extent a box is allowed along any axis.  Flat
// geometry such as quads would otherwise produce slabs with no volume.
const MinThickness = 0.0001

type AABox struct {
	X, Y, Z ray.Span
}

// AccumZeroAABox returns the empty box, the identity for MinContainingAABox.
func AccumZeroAABox() AABox {
	return AABox{
		X: ray.EmptySpan(),
		Y: ray.EmptySpan(),
		Z: ray.EmptySpan(),
	}
}

// FromSpans builds a box from per-axis spans, padding thin axes.
func FromSpans(x, y, z ray.Span) AABox {
	b := AABox{X: x, Y: y, Z: z}
	b.padToMinimum()
	return b
}

// FromPoints builds the box with opposite corners a and b.
func FromPoints(a, b vec3.T) AABox {
	return FromSpans(
		ray.Span{Lo: min(a[0], b[0]), Hi: max(a[0], b[0])},
		ray.Span{Lo: min(a[1], b[1]), Hi: max(a[1], b[1])},
		ray.Span{Lo: min(a[2], b[2]), Hi: max(a[2], b[2])},
	)
}

func MinContainingAABox(a, b AABox) AABox {
	return AABox{
		X: ray.MinContainingSpan(a.X, b.X),
		Y: ray.MinContainingSpan(a.Y, b.Y),
		Z: ray.MinContainingSpan(a.Z, b.Z),
	}
}

// Axis returns the span of the box along axis 0 (x), 1 (y) or 2 (z).
func (a AABox) Axis(i int) ray.Span {
	switch i {
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	return a.X
}

func (a AABox) IsFinite() bool {
	return a.X.IsFinite() && a.Y.IsFinite() && a.Z.IsFinite()
}

func (a AABox) IsEmpty() bool {
	return a.X.IsEmpty() || a.Y.IsEmpty() || a.Z.IsEmpty()
}

// Contains reports whether b lies entirely within a.
func (a AABox) Contains(b AABox) bool {
	return a.X.Lo <= b.X.Lo && b.X.Hi <= a.X.Hi &&
		a.Y.Lo <= b.Y.Lo && b.Y.Hi <= a.Y.Hi &&
		a.Z.Lo <= b.Z.Lo && b.Z.Hi <= a.Z.Hi
}

func (a AABox) SurfaceArea() float64 {
	xLen := a.X.Hi - a.X.Lo
	yLen := a.Y.Hi - a.Y.Lo
	zLen := a.Z.Hi - a.Z.Lo
	return 2 * (xLen*yLen + xLen*zLen + yLen*zLen)
}

// LongestAxis returns the index of the widest axis.  Ties are broken by the
// nested comparison x-vs-y then winner-vs-z, which prefers z on any tie
// involving it.
func (a AABox) LongestAxis() int {
	xSize := a.X.Size()
	ySize := a.Y.Size()
	zSize := a.Z.Size()

	if xSize > ySize {
		if xSize > zSize {
			return 0
		}
		return 2
	}
	if ySize > zSize {
		return 1
	}
	return 2
}

// RayTest reports whether the query's ray passes through the box within the
// query's span.
//
// Zero direction components produce infinite reciprocals; the comparisons
// below handle them without special cases.
func (a AABox) RayTest(q ray.RaySegment) bool {
	cover := q.TheSegment

	for axis := 0; axis < 3; axis++ {
		ax := a.Axis(axis)
		invD := 1.0 / q.TheRay.Slope[axis]
		t0 := (ax.Lo - q.TheRay.Point[axis]) * invD
		t1 := (ax.Hi - q.TheRay.Point[axis]) * invD

		if invD < 0 {
			t0, t1 = t1, t0
		}

		if t0 > cover.Lo {
			cover.Lo = t0
		}
		if t1 < cover.Hi {
			cover.Hi = t1
		}

		if cover.Hi <= cover.Lo {
			return false
		}
	}

	return true
}

func (a *AABox) padToMinimum() {
	if a.X.Size() < MinThickness {
		a.X = a.X.Expand(MinThickness)
	}
	if a.Y.Size() < MinThickness {
		a.Y = a.Y.Expand(MinThickness)
	}
	if a.Z.Size() < MinThickness {
		a.Z = a.Z.Expand(MinThickness)
	}
}
