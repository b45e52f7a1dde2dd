package scene

import (
	"math"
	"math/rand"

	"harpoon/camera"
	"harpoon/geometry"
	"harpoon/ray"
	"harpoon/vmath/vec3"
)

// Scene is everything needed to produce an image.
type Scene struct {
	Name string

	World geometry.Geometry

	// Background gives the radiance seen along rays that escape the world.
	Background func(ray.Ray) vec3.T

	Camera camera.Camera

	// AspectRatio is the preferred width over height, used to size the image
	// when only one dimension is given.
	AspectRatio float64
}

var (
	white   = vec3.T{1, 1, 1}
	skyBlue = vec3.T{0.5, 0.7, 1.0}
)

// SkyGradient blends white at the horizon into light blue overhead.
func SkyGradient(r ray.Ray) vec3.T {
	unit := vec3.Normalize(r.Slope)
	a := 0.5 * (unit[1] + 1.0)
	return vec3.Lerp(a, white, skyBlue)
}

// SolidBackground returns a background of constant color.
func SolidBackground(color vec3.T) func(ray.Ray) vec3.T {
	return func(ray.Ray) vec3.T {
		return color
	}
}

// The lower bound keeps scattered rays from re-hitting the surface they left.
var hitSpan = ray.Span{Lo: 0.001, Hi: math.Inf(1)}

// RayColor estimates the radiance arriving along r from world, following at
// most depth bounces.  Escaping rays see the sky gradient.
func RayColor(r ray.Ray, depth int, world geometry.Geometry, rng *rand.Rand) vec3.T {
	c, _ := tracePath(r, depth, world, SkyGradient, rng)
	return c
}

// SampleRay is RayColor with the scene's own background.  It also reports
// the number of bounces the path took.
func (s *Scene) SampleRay(r ray.Ray, depth int, rng *rand.Rand) (vec3.T, int) {
	bg := s.Background
	if bg == nil {
		bg = SkyGradient
	}
	return tracePath(r, depth, s.World, bg, rng)
}

// tracePath is the iterative form of
//
//	color(r, d) = emitted + attenuation * color(scattered, d-1)
//
// with color(r, 0) = 0 and color(miss, d) = background(r).
func tracePath(r ray.Ray, depth int, world geometry.Geometry, background func(ray.Ray) vec3.T, rng *rand.Rand) (vec3.T, int) {
	accum := vec3.T{}
	throughput := white
	bounces := 0

	for ; depth > 0; depth-- {
		c, hit := world.RayInto(ray.RaySegment{TheRay: r, TheSegment: hitSpan})
		if !hit {
			accum = vec3.AddVV(accum, vec3.MulVV(throughput, background(r)))
			return accum, bounces
		}

		info, scattered := c.Material.Shade(c, rng)
		accum = vec3.AddVV(accum, vec3.MulVV(throughput, info.Emitted))
		if !scattered {
			return accum, bounces
		}

		throughput = vec3.MulVV(throughput, info.Attenuation)
		r = info.IncidentRay
		bounces++
	}

	return accum, bounces
}
