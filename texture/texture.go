// Package texture provides color maps that materials sample at a contact.
package texture

import (
	"image"
	"math"

	"harpoon/ray"
	"harpoon/vmath/vec2"
	"harpoon/vmath/vec3"
)

// Coords locates a lookup both on the surface (UV) and in space (P).
type Coords struct {
	UV vec2.T
	P  vec3.T
}

// Map is a texture: a function from surface coordinates to a linear RGB
// color.
type Map func(Coords) vec3.T

func Constant(color vec3.T) Map {
	return func(coords Coords) vec3.T {
		return color
	}
}

// Checker alternates between even and odd in a 3D checkerboard with cells of
// the given edge length.
func Checker(scale float64, even, odd Map) Map {
	invScale := 1.0 / scale
	return func(coords Coords) vec3.T {
		x := int(math.Floor(invScale * coords.P[0]))
		y := int(math.Floor(invScale * coords.P[1]))
		z := int(math.Floor(invScale * coords.P[2]))

		if (x+y+z)%2 == 0 {
			return even(coords)
		}
		return odd(coords)
	}
}

// Noise is a marbled gray texture driven by Perlin turbulence.
func Noise(p *Perlin, scale float64) Map {
	return func(coords Coords) vec3.T {
		v := 0.5 * (1 + math.Sin(scale*coords.P[2]+10*p.Turbulence(coords.P, 7)))
		return vec3.T{v, v, v}
	}
}

var magenta = vec3.T{1, 0, 1}

// Image maps UV onto img, with v=0 at the bottom row.  Texels are assumed to
// be gamma-2 encoded and are linearized on lookup.  A nil image yields solid
// magenta, so missing assets are obvious in the render.
func Image(img image.Image) Map {
	if img == nil {
		return Constant(magenta)
	}

	b := img.Bounds()
	unit := ray.Span{Lo: 0, Hi: 1}

	return func(coords Coords) vec3.T {
		u := unit.Clamp(coords.UV[0])
		v := 1.0 - unit.Clamp(coords.UV[1])

		i := int(u * float64(b.Dx()))
		j := int(v * float64(b.Dy()))
		if i >= b.Dx() {
			i = b.Dx() - 1
		}
		if j >= b.Dy() {
			j = b.Dy() - 1
		}

		r, g, bl, _ := img.At(b.Min.X+i, b.Min.Y+j).RGBA()
		return vec3.T{linearize(r), linearize(g), linearize(bl)}
	}
}

// linearize converts a 16-bit gamma-2 channel into a linear intensity.
func linearize(c uint32) float64 {
	f := float64(c) / 0xffff
	return f * f
}
