package geometry

import (
	"math"

	"harpoon/aabox"
	"harpoon/contact"
	"harpoon/ray"
	"harpoon/vmath/vec2"
	"harpoon/vmath/vec3"
)

// Quad is the parallelogram with corner Q and edges U and V.
type Quad struct {
	Q, U, V  vec3.T
	Material contact.Material

	// Unit plane normal and plane offset (normal . x = d).
	normal vec3.T
	d      float64

	// w = n / (n . n) for the unnormalized normal n = U x V.  Dotting it with
	// cross products against the edges yields planar coordinates directly.
	w vec3.T

	bounds aabox.AABox
}

func NewQuad(q, u, v vec3.T, mtl contact.Material) *Quad {
	n := vec3.CProd(u, v)
	normal := vec3.Normalize(n)

	diag1 := aabox.FromPoints(q, vec3.AddVV(vec3.AddVV(q, u), v))
	diag2 := aabox.FromPoints(vec3.AddVV(q, u), vec3.AddVV(q, v))

	return &Quad{
		Q:        q,
		U:        u,
		V:        v,
		Material: mtl,
		normal:   normal,
		d:        vec3.IProd(normal, q),
		w:        vec3.DivVS(n, vec3.IProd(n, n)),
		bounds:   aabox.MinContainingAABox(diag1, diag2),
	}
}

func (q *Quad) GetAABox() aabox.AABox {
	return q.bounds
}

// PlanarCoords returns the coordinates (alpha, beta) of p, a point on the
// quad's plane, in the basis formed by U and V with origin Q.
func (q *Quad) PlanarCoords(p vec3.T) (float64, float64) {
	rel := vec3.SubVV(p, q.Q)
	alpha := vec3.IProd(q.w, vec3.CProd(rel, q.V))
	beta := vec3.IProd(q.w, vec3.CProd(q.U, rel))
	return alpha, beta
}

func (q *Quad) RayInto(query ray.RaySegment) (contact.Contact, bool) {
	r := query.TheRay

	denom := vec3.IProd(q.normal, r.Slope)
	if math.Abs(denom) < 1e-8 {
		return contact.Contact{}, false
	}

	t := (q.d - vec3.IProd(q.normal, r.Point)) / denom
	if !query.TheSegment.Contains(t) {
		return contact.Contact{}, false
	}

	p := r.Eval(t)
	alpha, beta := q.PlanarCoords(p)
	unit := ray.Span{Lo: 0, Hi: 1}
	if !unit.Contains(alpha) || !unit.Contains(beta) {
		return contact.Contact{}, false
	}

	result := contact.Contact{
		T:        t,
		R:        r,
		P:        p,
		Mtl2:     vec2.T{alpha, beta},
		Material: q.Material,
	}
	result.SetFaceNormal(q.normal)

	return result, true
}
