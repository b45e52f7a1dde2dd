package camera

import (
	"math"
	"math/rand"

	"harpoon/ray"
	"harpoon/vmath/vec3"
)

type Camera interface {
	ImageToRay(curRow, imgRows, curCol, imgCols int, rng *rand.Rand) ray.Ray
}

// ThinLensConfig describes a camera in scene terms.  Angles are in degrees.
type ThinLensConfig struct {
	LookFrom vec3.T
	LookAt   vec3.T
	VUp      vec3.T

	// Vertical field of view.
	VFOV float64

	// DefocusAngle is the cone angle subtended by the lens at the focus
	// plane.  Zero gives a pinhole.
	DefocusAngle float64

	// FocusDistance is the distance from LookFrom to the plane of perfect
	// focus.  Zero means the distance to LookAt.
	FocusDistance float64
}

// ThinLens generates rays from a disk-shaped lens through a viewport placed
// on the focus plane.  The viewport height is fixed by the field of view; its
// width follows the shape of the image being rendered.
type ThinLens struct {
	Center vec3.T

	// Viewport center and edge vectors, in world space.  viewportRight spans
	// a viewport one unit of aspect ratio wide.
	viewportCenter vec3.T
	viewportRight  vec3.T
	viewportDown   vec3.T
	defocusDiskU   vec3.T
	defocusDiskV   vec3.T
	defocusEnabled bool

	// Orthonormal camera frame.  W points backwards, away from LookAt.
	U, V, W vec3.T
}

func NewThinLens(cfg ThinLensConfig) *ThinLens {
	if cfg.VFOV <= 0 {
		cfg.VFOV = 90
	}
	if cfg.VUp == (vec3.T{}) {
		cfg.VUp = vec3.T{0, 1, 0}
	}

	focusDist := cfg.FocusDistance
	if focusDist <= 0 {
		focusDist = vec3.SubVV(cfg.LookFrom, cfg.LookAt).Norm()
	}

	theta := degreesToRadians(cfg.VFOV)
	viewportHeight := 2 * math.Tan(theta/2) * focusDist

	c := &ThinLens{Center: cfg.LookFrom}
	c.W = vec3.Normalize(vec3.SubVV(cfg.LookFrom, cfg.LookAt))
	c.U = vec3.Normalize(vec3.CProd(cfg.VUp, c.W))
	c.V = vec3.CProd(c.W, c.U)

	c.viewportRight = vec3.MulVS(c.U, viewportHeight)
	c.viewportDown = vec3.MulVS(c.V, -viewportHeight)
	c.viewportCenter = vec3.SubVV(c.Center, vec3.MulVS(c.W, focusDist))

	if cfg.DefocusAngle > 0 {
		radius := focusDist * math.Tan(degreesToRadians(cfg.DefocusAngle/2))
		c.defocusDiskU = vec3.MulVS(c.U, radius)
		c.defocusDiskV = vec3.MulVS(c.V, radius)
		c.defocusEnabled = true
	}

	return c
}

// ImageToRay samples a ray through a random point of the given pixel.  The
// ray time is uniform in [0, 1).
func (c *ThinLens) ImageToRay(curRow, imgRows, curCol, imgCols int, rng *rand.Rand) ray.Ray {
	aspect := float64(imgCols) / float64(imgRows)

	// Offsets from the viewport center, in [-0.5, 0.5).
	s := (float64(curCol)+rng.Float64())/float64(imgCols) - 0.5
	t := (float64(curRow)+rng.Float64())/float64(imgRows) - 0.5

	target := vec3.AddVV(c.viewportCenter, vec3.MulVS(c.viewportRight, s*aspect))
	target = vec3.AddVV(target, vec3.MulVS(c.viewportDown, t))

	origin := c.Center
	if c.defocusEnabled {
		d := vec3.UnitDiskDistribution(rng)
		origin = vec3.AddVV(origin, vec3.MulVS(c.defocusDiskU, d[0]))
		origin = vec3.AddVV(origin, vec3.MulVS(c.defocusDiskV, d[1]))
	}

	return ray.Ray{
		Point: origin,
		Slope: vec3.SubVV(target, origin),
		Time:  rng.Float64(),
	}
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
