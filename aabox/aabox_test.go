package aabox

import (
	"math"
	"math/rand"
	"testing"

	"harpoon/ray"
	"harpoon/vmath/vec3"
)

func randomBox(rng *rand.Rand) AABox {
	a := vec3.RandomRange(rng, -10, 10)
	b := vec3.RandomRange(rng, -10, 10)
	return FromPoints(a, b)
}

func TestUnionContainsBoth(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := randomBox(rng)
		b := randomBox(rng)
		u := MinContainingAABox(a, b)
		if !u.Contains(a) || !u.Contains(b) {
			t.Fatalf("Union %+v of %+v and %+v doesn't contain both", u, a, b)
		}
	}
}

func TestAccumZeroIsIdentity(t *testing.T) {
	b := FromPoints(vec3.T{0, 0, 0}, vec3.T{1, 2, 3})
	if got := MinContainingAABox(AccumZeroAABox(), b); got != b {
		t.Errorf("Union with empty box = %+v, want %+v", got, b)
	}
	if !AccumZeroAABox().IsEmpty() {
		t.Errorf("AccumZeroAABox() is not empty")
	}
}

func TestFromPointsPadsFlatAxes(t *testing.T) {
	b := FromPoints(vec3.T{0, 0, 5}, vec3.T{1, 1, 5})
	if got := b.Z.Size(); math.Abs(got-MinThickness) > 1e-12 {
		t.Errorf("Flat axis has size %v, want %v", got, MinThickness)
	}
	if got := b.X.Size(); got != 1 {
		t.Errorf("X axis has size %v, want 1", got)
	}
}

func TestLongestAxis(t *testing.T) {
	testCases := []struct {
		desc string
		box  AABox
		want int
	}{
		{"x", FromPoints(vec3.T{0, 0, 0}, vec3.T{3, 1, 1}), 0},
		{"y", FromPoints(vec3.T{0, 0, 0}, vec3.T{1, 3, 1}), 1},
		{"z", FromPoints(vec3.T{0, 0, 0}, vec3.T{1, 1, 3}), 2},
		{"cube", FromPoints(vec3.T{0, 0, 0}, vec3.T{1, 1, 1}), 2},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := tc.box.LongestAxis(); got != tc.want {
				t.Errorf("LongestAxis() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRayTest(t *testing.T) {
	box := FromPoints(vec3.T{-1, -1, -1}, vec3.T{1, 1, 1})
	universe := ray.Span{Lo: 0, Hi: math.Inf(1)}

	testCases := []struct {
		desc string
		q    ray.RaySegment
		want bool
	}{
		{
			desc: "straight through",
			q:    ray.RaySegment{TheRay: ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -1}}, TheSegment: universe},
			want: true,
		},
		{
			desc: "pointing away",
			q:    ray.RaySegment{TheRay: ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, 1}}, TheSegment: universe},
			want: false,
		},
		{
			desc: "passes beside",
			q:    ray.RaySegment{TheRay: ray.Ray{Point: vec3.T{3, 0, 5}, Slope: vec3.T{0, 0, -1}}, TheSegment: universe},
			want: false,
		},
		{
			desc: "segment ends short",
			q:    ray.RaySegment{TheRay: ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -1}}, TheSegment: ray.Span{Lo: 0, Hi: 3}},
			want: false,
		},
		{
			desc: "origin inside",
			q:    ray.RaySegment{TheRay: ray.Ray{Point: vec3.T{0, 0, 0}, Slope: vec3.T{1, 2, 3}}, TheSegment: universe},
			want: true,
		},
		{
			desc: "diagonal miss",
			q:    ray.RaySegment{TheRay: ray.Ray{Point: vec3.T{-5, 0, 0}, Slope: vec3.T{1, 1, 0}}, TheSegment: universe},
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := box.RayTest(tc.q); got != tc.want {
				t.Errorf("RayTest() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSurfaceArea(t *testing.T) {
	b := FromPoints(vec3.T{0, 0, 0}, vec3.T{1, 2, 3})
	if got, want := b.SurfaceArea(), 22.0; got != want {
		t.Errorf("SurfaceArea() = %v, want %v", got, want)
	}
}
