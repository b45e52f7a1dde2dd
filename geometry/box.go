package geometry

import (
	"harpoon/contact"
	"harpoon/vmath/vec3"
)

// NewBox returns the six quads bounding the axis-aligned box with opposite
// corners a and b.  Face normals point outward.
func NewBox(a, b vec3.T, mtl contact.Material) *List {
	lo := vec3.T{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
	hi := vec3.T{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}

	dx := vec3.T{hi[0] - lo[0], 0, 0}
	dy := vec3.T{0, hi[1] - lo[1], 0}
	dz := vec3.T{0, 0, hi[2] - lo[2]}

	return NewList(
		NewQuad(vec3.T{lo[0], lo[1], hi[2]}, dx, dy, mtl),
		NewQuad(vec3.T{hi[0], lo[1], hi[2]}, vec3.Neg(dz), dy, mtl),
		NewQuad(vec3.T{hi[0], lo[1], lo[2]}, vec3.Neg(dx), dy, mtl),
		NewQuad(vec3.T{lo[0], lo[1], lo[2]}, dz, dy, mtl),
		NewQuad(vec3.T{lo[0], hi[1], hi[2]}, dx, vec3.Neg(dz), mtl),
		NewQuad(vec3.T{lo[0], lo[1], lo[2]}, dx, dz, mtl),
	)
}
