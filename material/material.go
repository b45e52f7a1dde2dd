package material

import (
	"math"
	"math/rand"

	"harpoon/contact"
	"harpoon/ray"
	"harpoon/texture"
	"harpoon/vmath/vec3"
)

var white = vec3.T{1, 1, 1}

func coordsOf(c contact.Contact) texture.Coords {
	return texture.Coords{UV: c.Mtl2, P: c.P}
}

// Lambertian is an ideal diffuse reflector.
type Lambertian struct {
	Albedo texture.Map
}

func NewLambertian(albedo vec3.T) *Lambertian {
	return &Lambertian{Albedo: texture.Constant(albedo)}
}

func (l *Lambertian) Shade(c contact.Contact, rng *rand.Rand) (contact.ShadeInfo, bool) {
	dir := vec3.AddVV(c.N, vec3.UniformUnitDistribution(rng))

	// The sample can land almost exactly opposite the normal.
	if dir.NearZero() {
		dir = c.N
	}

	return contact.ShadeInfo{
		Attenuation: l.Albedo(coordsOf(c)),
		IncidentRay: ray.Ray{
			Point: c.P,
			Slope: dir,
			Time:  c.R.Time,
		},
	}, true
}

// Metal is a specular reflector.  Fuzz perturbs the mirror direction; zero
// gives a perfect mirror.
type Metal struct {
	Albedo vec3.T
	Fuzz   float64
}

// NewMetal clamps fuzz to at most 1.
func NewMetal(albedo vec3.T, fuzz float64) *Metal {
	return &Metal{Albedo: albedo, Fuzz: math.Min(fuzz, 1)}
}

func (m *Metal) Shade(c contact.Contact, rng *rand.Rand) (contact.ShadeInfo, bool) {
	reflected := vec3.Normalize(vec3.Reflect(c.R.Slope, c.N))
	reflected = vec3.AddVV(reflected, vec3.MulVS(vec3.UniformUnitDistribution(rng), m.Fuzz))

	info := contact.ShadeInfo{
		Attenuation: m.Albedo,
		IncidentRay: ray.Ray{
			Point: c.P,
			Slope: reflected,
			Time:  c.R.Time,
		},
	}

	// Fuzz can push the ray below the surface; it's absorbed.
	return info, vec3.IProd(reflected, c.N) > 0
}

// Dielectric is a clear refractive material such as glass or water.
type Dielectric struct {
	// RefractiveIndex is relative to the enclosing medium.
	RefractiveIndex float64
}

func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

func (d *Dielectric) Shade(c contact.Contact, rng *rand.Rand) (contact.ShadeInfo, bool) {
	ratio := d.RefractiveIndex
	if c.FrontFace {
		ratio = 1.0 / d.RefractiveIndex
	}

	unitDir := vec3.Normalize(c.R.Slope)
	cosTheta := math.Min(vec3.IProd(vec3.Neg(unitDir), c.N), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	var dir vec3.T
	if ratio*sinTheta > 1.0 || Reflectance(cosTheta, ratio) > rng.Float64() {
		dir = vec3.Reflect(unitDir, c.N)
	} else {
		dir = vec3.Refract(unitDir, c.N, ratio)
	}

	return contact.ShadeInfo{
		Attenuation: white,
		IncidentRay: ray.Ray{
			Point: c.P,
			Slope: dir,
			Time:  c.R.Time,
		},
	}, true
}

// Reflectance is Schlick's approximation of the Fresnel reflectance at a
// boundary with the given relative refractive index.
func Reflectance(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// DiffuseLight is an emitter.  It absorbs everything that arrives.
type DiffuseLight struct {
	Emit texture.Map
}

func NewDiffuseLight(color vec3.T) *DiffuseLight {
	return &DiffuseLight{Emit: texture.Constant(color)}
}

func (l *DiffuseLight) Shade(c contact.Contact, rng *rand.Rand) (contact.ShadeInfo, bool) {
	return contact.ShadeInfo{
		Emitted: l.Emit(coordsOf(c)),
	}, false
}
