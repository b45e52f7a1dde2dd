package ray

import (
	"math"
	"testing"

	"harpoon/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestSpanMembership(t *testing.T) {
	s := Span{Lo: 1, Hi: 2}

	testCases := []struct {
		x             float64
		wantContains  bool
		wantSurrounds bool
	}{
		{0.5, false, false},
		{1, true, false},
		{1.5, true, true},
		{2, true, false},
		{2.5, false, false},
	}

	for _, tc := range testCases {
		if got := s.Contains(tc.x); got != tc.wantContains {
			t.Errorf("%v.Contains(%v) = %v, want %v", s, tc.x, got, tc.wantContains)
		}
		if got := s.Surrounds(tc.x); got != tc.wantSurrounds {
			t.Errorf("%v.Surrounds(%v) = %v, want %v", s, tc.x, got, tc.wantSurrounds)
		}
	}
}

func TestEmptySpanIsIdentity(t *testing.T) {
	s := Span{Lo: -3, Hi: 4}
	if diff := cmp.Diff(MinContainingSpan(EmptySpan(), s), s); diff != "" {
		t.Errorf("Bad union with empty span; diff (-got +want)\n%s", diff)
	}
	if !EmptySpan().IsEmpty() {
		t.Errorf("EmptySpan() is not empty")
	}
	if UniverseSpan().IsFinite() {
		t.Errorf("UniverseSpan() is finite")
	}
	if !math.IsInf(UniverseSpan().Size(), 1) {
		t.Errorf("UniverseSpan().Size() = %v, want +Inf", UniverseSpan().Size())
	}
}

func TestSpanExpand(t *testing.T) {
	got := Span{Lo: 1, Hi: 1}.Expand(0.5)
	want := Span{Lo: 0.75, Hi: 1.25}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad expansion; diff (-got +want)\n%s", diff)
	}
}

func TestSpanClamp(t *testing.T) {
	s := Span{Lo: 0, Hi: 1}
	for x, want := range map[float64]float64{-1: 0, 0.25: 0.25, 7: 1} {
		if got := s.Clamp(x); got != want {
			t.Errorf("Clamp(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestRayEval(t *testing.T) {
	r := Ray{Point: vec3.T{1, 2, 3}, Slope: vec3.T{0, 0, -1}}
	got := r.Eval(2)
	want := vec3.T{1, 2, 1}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad point; diff (-got +want)\n%s", diff)
	}
}
