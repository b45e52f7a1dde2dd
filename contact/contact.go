package contact

import (
	"math/rand"

	"harpoon/ray"
	"harpoon/vmath/vec2"
	"harpoon/vmath/vec3"
)

// Contact records where a ray struck a surface.
type Contact struct {
	// Ray parameter of the hit.
	T float64

	// The incoming ray.
	R ray.Ray

	P vec3.T

	// N is the unit surface normal, always facing against R.
	N vec3.T

	// FrontFace is true when R struck the outside of the surface.
	FrontFace bool

	// Surface coordinates, for texture lookups.
	Mtl2 vec2.T

	// Material is shared between every surface that uses it.
	Material Material
}

// SetFaceNormal orients N against the incoming ray, given the geometry's
// outward unit normal.
func (c *Contact) SetFaceNormal(outwardNormal vec3.T) {
	c.FrontFace = vec3.IProd(c.R.Slope, outwardNormal) < 0
	if c.FrontFace {
		c.N = outwardNormal
	} else {
		c.N = vec3.Neg(outwardNormal)
	}
}

// ShadeInfo is the result of shading a contact.
type ShadeInfo struct {
	// Attenuation is multiplied component-wise into everything gathered
	// along IncidentRay.
	Attenuation vec3.T

	// Emitted is the radiance the surface gives off on its own.
	Emitted vec3.T

	IncidentRay ray.Ray
}

// Material decides what happens to light arriving at a contact.
//
// Shade returns false when the path is absorbed, in which case only
// ShadeInfo.Emitted is meaningful.
type Material interface {
	Shade(c Contact, rng *rand.Rand) (ShadeInfo, bool)
}
