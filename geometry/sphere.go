package geometry

import (
	"math"

	"harpoon/aabox"
	"harpoon/contact"
	"harpoon/ray"
	"harpoon/vmath/vec2"
	"harpoon/vmath/vec3"
)

// Sphere is a sphere whose center moves linearly from Center0 at time 0 to
// Center1 at time 1.  Static spheres have equal centers.
type Sphere struct {
	Center0  vec3.T
	Center1  vec3.T
	Radius   float64
	Material contact.Material

	bounds aabox.AABox
}

func NewSphere(center vec3.T, radius float64, mtl contact.Material) *Sphere {
	return NewMovingSphere(center, center, radius, mtl)
}

func NewMovingSphere(center0, center1 vec3.T, radius float64, mtl contact.Material) *Sphere {
	s := &Sphere{
		Center0:  center0,
		Center1:  center1,
		Radius:   math.Max(radius, 0),
		Material: mtl,
	}

	rvec := vec3.T{s.Radius, s.Radius, s.Radius}
	box0 := aabox.FromPoints(vec3.SubVV(center0, rvec), vec3.AddVV(center0, rvec))
	box1 := aabox.FromPoints(vec3.SubVV(center1, rvec), vec3.AddVV(center1, rvec))
	s.bounds = aabox.MinContainingAABox(box0, box1)

	return s
}

// CenterAt returns the sphere's center at the given shutter time.
func (s *Sphere) CenterAt(time float64) vec3.T {
	return vec3.AddVV(s.Center0, vec3.MulVS(vec3.SubVV(s.Center1, s.Center0), time))
}

func (s *Sphere) GetAABox() aabox.AABox {
	return s.bounds
}

// Discriminant returns the quarter-discriminant h*h - a*c of the ray/sphere
// quadratic.  It is negative on a miss and zero for a tangent ray.
func (s *Sphere) Discriminant(r ray.Ray) float64 {
	oc := vec3.SubVV(s.CenterAt(r.Time), r.Point)
	a := r.Slope.NormSquared()
	h := vec3.IProd(r.Slope, oc)
	c := oc.NormSquared() - s.Radius*s.Radius
	return h*h - a*c
}

func (s *Sphere) RayInto(query ray.RaySegment) (contact.Contact, bool) {
	r := query.TheRay
	center := s.CenterAt(r.Time)

	oc := vec3.SubVV(center, r.Point)
	a := r.Slope.NormSquared()
	h := vec3.IProd(r.Slope, oc)
	c := oc.NormSquared() - s.Radius*s.Radius

	discriminant := h*h - a*c
	if discriminant < 0 {
		return contact.Contact{}, false
	}
	sqrtd := math.Sqrt(discriminant)

	root := (h - sqrtd) / a
	if !query.TheSegment.Surrounds(root) {
		root = (h + sqrtd) / a
		if !query.TheSegment.Surrounds(root) {
			return contact.Contact{}, false
		}
	}

	p := r.Eval(root)
	outwardNormal := vec3.DivVS(vec3.SubVV(p, center), s.Radius)

	result := contact.Contact{
		T:        root,
		R:        r,
		P:        p,
		Mtl2:     SphereUV(outwardNormal),
		Material: s.Material,
	}
	result.SetFaceNormal(outwardNormal)

	return result, true
}

// SphereUV maps a point on the unit sphere to texture coordinates.  u runs
// around the Y axis starting from -X, v runs from the south pole to the north
// pole.
func SphereUV(p vec3.T) vec2.T {
	theta := math.Acos(-p[1])
	phi := math.Atan2(-p[2], p[0]) + math.Pi
	return vec2.T{phi / (2 * math.Pi), theta / math.Pi}
}
