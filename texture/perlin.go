package texture

import (
	"math"
	"math/rand"

	"harpoon/vmath/vec3"
)

const perlinPointCount = 256

// Perlin is a gradient noise generator.  It is read-only after NewPerlin
// returns.
type Perlin struct {
	gradients [perlinPointCount]vec3.T
	permX     [perlinPointCount]int
	permY     [perlinPointCount]int
	permZ     [perlinPointCount]int
}

func NewPerlin(rng *rand.Rand) *Perlin {
	p := &Perlin{}
	for i := range p.gradients {
		p.gradients[i] = vec3.Normalize(vec3.RandomRange(rng, -1, 1))
	}
	generatePerm(&p.permX, rng)
	generatePerm(&p.permY, rng)
	generatePerm(&p.permZ, rng)
	return p
}

func generatePerm(perm *[perlinPointCount]int, rng *rand.Rand) {
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		target := rng.Intn(i + 1)
		perm[i], perm[target] = perm[target], perm[i]
	}
}

// Noise returns smooth noise in roughly [-1, 1].
func (p *Perlin) Noise(pt vec3.T) float64 {
	u := pt[0] - math.Floor(pt[0])
	v := pt[1] - math.Floor(pt[1])
	w := pt[2] - math.Floor(pt[2])

	i := int(math.Floor(pt[0]))
	j := int(math.Floor(pt[1]))
	k := int(math.Floor(pt[2]))

	var c [2][2][2]vec3.T
	for di := 0; di < 2; di++ {
		for dj := 0; dj < 2; dj++ {
			for dk := 0; dk < 2; dk++ {
				c[di][dj][dk] = p.gradients[p.permX[(i+di)&(perlinPointCount-1)]^
					p.permY[(j+dj)&(perlinPointCount-1)]^
					p.permZ[(k+dk)&(perlinPointCount-1)]]
			}
		}
	}

	return perlinInterp(&c, u, v, w)
}

// Turbulence sums depth octaves of noise, halving the weight and doubling the
// frequency at each octave.
func (p *Perlin) Turbulence(pt vec3.T, depth int) float64 {
	accum := 0.0
	weight := 1.0
	for i := 0; i < depth; i++ {
		accum += weight * p.Noise(pt)
		weight *= 0.5
		pt = vec3.MulVS(pt, 2)
	}
	return math.Abs(accum)
}

func perlinInterp(c *[2][2][2]vec3.T, u, v, w float64) float64 {
	uu := u * u * (3 - 2*u)
	vv := v * v * (3 - 2*v)
	ww := w * w * (3 - 2*w)

	accum := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				fi, fj, fk := float64(i), float64(j), float64(k)
				weight := vec3.T{u - fi, v - fj, w - fk}
				accum += (fi*uu + (1-fi)*(1-uu)) *
					(fj*vv + (1-fj)*(1-vv)) *
					(fk*ww + (1-fk)*(1-ww)) *
					vec3.IProd(c[i][j][k], weight)
			}
		}
	}
	return accum
}
