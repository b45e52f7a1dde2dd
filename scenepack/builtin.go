package scenepack

import (
	"math/rand"

	"harpoon/bvh"
	"harpoon/camera"
	"harpoon/contact"
	"harpoon/geometry"
	"harpoon/material"
	"harpoon/ray"
	"harpoon/scene"
	"harpoon/texture"
	"harpoon/vmath/vec3"
)

const wideAspect = 16.0 / 9.0

var black = vec3.T{}

func finish(world *geometry.List, background func(ray.Ray) vec3.T, aspect float64, cfg camera.ThinLensConfig) *scene.Scene {
	return &scene.Scene{
		World:       bvh.FromList(world),
		Background:  background,
		Camera:      camera.NewThinLens(cfg),
		AspectRatio: aspect,
	}
}

// A field of small random spheres around three large ones.  When
// bounce is set the diffuse spheres hop upward over the shutter interval.
func randomSpheres(rng *rand.Rand, ground texture.Map, bounce bool) *geometry.List {
	world := geometry.NewList()
	world.Add(geometry.NewSphere(vec3.T{0, -1000, 0}, 1000, &material.Lambertian{Albedo: ground}))

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := rng.Float64()
			center := vec3.T{float64(a) + 0.9*rng.Float64(), 0.2, float64(b) + 0.9*rng.Float64()}

			if vec3.SubVV(center, vec3.T{4, 0.2, 0}).Norm() <= 0.9 {
				continue
			}

			var mtl contact.Material
			center1 := center
			switch {
			case chooseMat < 0.8:
				mtl = material.NewLambertian(vec3.MulVV(vec3.Random(rng), vec3.Random(rng)))
				if bounce {
					center1 = vec3.AddVV(center, vec3.T{0, 0.5 * rng.Float64(), 0})
				}
			case chooseMat < 0.95:
				mtl = material.NewMetal(vec3.RandomRange(rng, 0.5, 1), 0.5*rng.Float64())
			default:
				mtl = material.NewDielectric(1.5)
			}

			world.Add(geometry.NewMovingSphere(center, center1, 0.2, mtl))
		}
	}

	world.Add(geometry.NewSphere(vec3.T{0, 1, 0}, 1.0, material.NewDielectric(1.5)))
	world.Add(geometry.NewSphere(vec3.T{-4, 1, 0}, 1.0, material.NewLambertian(vec3.T{0.4, 0.2, 0.1})))
	world.Add(geometry.NewSphere(vec3.T{4, 1, 0}, 1.0, material.NewMetal(vec3.T{0.7, 0.6, 0.5}, 0.0)))
	return world
}

var wideShot = camera.ThinLensConfig{
	LookFrom:      vec3.T{13, 2, 3},
	LookAt:        vec3.T{0, 0, 0},
	VUp:           vec3.T{0, 1, 0},
	VFOV:          20,
	DefocusAngle:  0.6,
	FocusDistance: 10,
}

func finalWeekend(rng *rand.Rand) (*scene.Scene, error) {
	world := randomSpheres(rng, texture.Constant(vec3.T{0.5, 0.5, 0.5}), false)
	return finish(world, scene.SkyGradient, wideAspect, wideShot), nil
}

func bouncingSpheres(rng *rand.Rand) (*scene.Scene, error) {
	checker := texture.Checker(0.32, texture.Constant(vec3.T{0.2, 0.3, 0.1}), texture.Constant(vec3.T{0.9, 0.9, 0.9}))
	world := randomSpheres(rng, checker, true)
	return finish(world, scene.SkyGradient, wideAspect, wideShot), nil
}

var pinholeShot = camera.ThinLensConfig{
	LookFrom: vec3.T{13, 2, 3},
	LookAt:   vec3.T{0, 0, 0},
	VUp:      vec3.T{0, 1, 0},
	VFOV:     20,
}

func checkeredSpheres(rng *rand.Rand) (*scene.Scene, error) {
	checker := &material.Lambertian{
		Albedo: texture.Checker(0.32, texture.Constant(vec3.T{0.2, 0.3, 0.1}), texture.Constant(vec3.T{0.9, 0.9, 0.9})),
	}

	world := geometry.NewList(
		geometry.NewSphere(vec3.T{0, -10, 0}, 10, checker),
		geometry.NewSphere(vec3.T{0, 10, 0}, 10, checker),
	)
	return finish(world, scene.SkyGradient, wideAspect, pinholeShot), nil
}

func earth(rng *rand.Rand) (*scene.Scene, error) {
	img, err := texture.LoadImage("earthmap.jpg")
	if err != nil {
		return nil, err
	}

	surface := &material.Lambertian{Albedo: texture.Image(img)}
	world := geometry.NewList(geometry.NewSphere(vec3.T{0, 0, 0}, 2, surface))

	cfg := pinholeShot
	cfg.LookFrom = vec3.T{0, 0, 12}
	return finish(world, scene.SkyGradient, wideAspect, cfg), nil
}

func perlinSpheres(rng *rand.Rand) (*scene.Scene, error) {
	marble := &material.Lambertian{Albedo: texture.Noise(texture.NewPerlin(rng), 4)}

	world := geometry.NewList(
		geometry.NewSphere(vec3.T{0, -1000, 0}, 1000, marble),
		geometry.NewSphere(vec3.T{0, 2, 0}, 2, marble),
	)
	return finish(world, scene.SkyGradient, wideAspect, pinholeShot), nil
}

func quads(rng *rand.Rand) (*scene.Scene, error) {
	leftRed := material.NewLambertian(vec3.T{1.0, 0.2, 0.2})
	backGreen := material.NewLambertian(vec3.T{0.2, 1.0, 0.2})
	rightBlue := material.NewLambertian(vec3.T{0.2, 0.2, 1.0})
	upperOrange := material.NewLambertian(vec3.T{1.0, 0.5, 0.0})
	lowerTeal := material.NewLambertian(vec3.T{0.2, 0.8, 0.8})

	world := geometry.NewList(
		geometry.NewQuad(vec3.T{-3, -2, 5}, vec3.T{0, 0, -4}, vec3.T{0, 4, 0}, leftRed),
		geometry.NewQuad(vec3.T{-2, -2, 0}, vec3.T{4, 0, 0}, vec3.T{0, 4, 0}, backGreen),
		geometry.NewQuad(vec3.T{3, -2, 1}, vec3.T{0, 0, 4}, vec3.T{0, 4, 0}, rightBlue),
		geometry.NewQuad(vec3.T{-2, 3, 1}, vec3.T{4, 0, 0}, vec3.T{0, 0, 4}, upperOrange),
		geometry.NewQuad(vec3.T{-2, -3, 5}, vec3.T{4, 0, 0}, vec3.T{0, 0, -4}, lowerTeal),
	)

	return finish(world, scene.SkyGradient, 1.0, camera.ThinLensConfig{
		LookFrom: vec3.T{0, 0, 9},
		LookAt:   vec3.T{0, 0, 0},
		VUp:      vec3.T{0, 1, 0},
		VFOV:     80,
	}), nil
}

func simpleLight(rng *rand.Rand) (*scene.Scene, error) {
	marble := &material.Lambertian{Albedo: texture.Noise(texture.NewPerlin(rng), 4)}
	light := material.NewDiffuseLight(vec3.T{4, 4, 4})

	world := geometry.NewList(
		geometry.NewSphere(vec3.T{0, -1000, 0}, 1000, marble),
		geometry.NewSphere(vec3.T{0, 2, 0}, 2, marble),
		geometry.NewSphere(vec3.T{0, 7, 0}, 2, light),
		geometry.NewQuad(vec3.T{3, 1, -2}, vec3.T{2, 0, 0}, vec3.T{0, 2, 0}, light),
	)

	return finish(world, scene.SolidBackground(black), wideAspect, camera.ThinLensConfig{
		LookFrom: vec3.T{26, 3, 6},
		LookAt:   vec3.T{0, 2, 0},
		VUp:      vec3.T{0, 1, 0},
		VFOV:     20,
	}), nil
}

func cornellBox(rng *rand.Rand) (*scene.Scene, error) {
	red := material.NewLambertian(vec3.T{0.65, 0.05, 0.05})
	white := material.NewLambertian(vec3.T{0.73, 0.73, 0.73})
	green := material.NewLambertian(vec3.T{0.12, 0.45, 0.15})
	light := material.NewDiffuseLight(vec3.T{15, 15, 15})

	world := geometry.NewList(
		geometry.NewQuad(vec3.T{555, 0, 0}, vec3.T{0, 555, 0}, vec3.T{0, 0, 555}, green),
		geometry.NewQuad(vec3.T{0, 0, 0}, vec3.T{0, 555, 0}, vec3.T{0, 0, 555}, red),
		geometry.NewQuad(vec3.T{343, 554, 332}, vec3.T{-130, 0, 0}, vec3.T{0, 0, -105}, light),
		geometry.NewQuad(vec3.T{0, 0, 0}, vec3.T{555, 0, 0}, vec3.T{0, 0, 555}, white),
		geometry.NewQuad(vec3.T{555, 555, 555}, vec3.T{-555, 0, 0}, vec3.T{0, 0, -555}, white),
		geometry.NewQuad(vec3.T{0, 0, 555}, vec3.T{555, 0, 0}, vec3.T{0, 555, 0}, white),
		geometry.NewBox(vec3.T{265, 0, 295}, vec3.T{430, 330, 460}, white),
		geometry.NewBox(vec3.T{130, 0, 65}, vec3.T{295, 165, 230}, white),
	)

	return finish(world, scene.SolidBackground(black), 1.0, camera.ThinLensConfig{
		LookFrom: vec3.T{278, 278, -800},
		LookAt:   vec3.T{278, 278, 0},
		VUp:      vec3.T{0, 1, 0},
		VFOV:     40,
	}), nil
}
