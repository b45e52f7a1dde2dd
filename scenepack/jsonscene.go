package scenepack

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"harpoon/bvh"
	"harpoon/camera"
	"harpoon/contact"
	"harpoon/geometry"
	"harpoon/material"
	"harpoon/ray"
	"harpoon/scene"
	"harpoon/texture"
	"harpoon/vmath/vec3"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/xerrors"
)

// File is the JSON form of a scene.
type File struct {
	Camera CameraSpec `json:"camera"`

	// Background is either the string "sky" or an [r, g, b] triple.  Empty
	// means "sky".
	Background json.RawMessage `json:"background,omitempty"`

	Textures  map[string]TextureSpec  `json:"textures,omitempty"`
	Materials map[string]MaterialSpec `json:"materials"`
	Objects   []ObjectSpec            `json:"objects"`
}

type CameraSpec struct {
	LookFrom      vec3.T  `json:"look_from"`
	LookAt        vec3.T  `json:"look_at"`
	VUp           *vec3.T `json:"vup,omitempty"`
	VFOV          float64 `json:"vfov"`
	ApertureAngle float64 `json:"aperture_angle,omitempty"`
	FocusDistance float64 `json:"focus_distance,omitempty"`
	AspectRatio   float64 `json:"aspect_ratio,omitempty"`
}

type TextureSpec struct {
	// Type is one of "solid", "checker", "noise" or "image".
	Type string `json:"type"`

	Color *vec3.T `json:"color,omitempty"`

	// Checker cell size or noise frequency.
	Scale float64 `json:"scale,omitempty"`
	Even  *vec3.T `json:"even,omitempty"`
	Odd   *vec3.T `json:"odd,omitempty"`

	// Path of an image, relative to the scene file or along the image
	// search path.
	Path string `json:"path,omitempty"`
}

type MaterialSpec struct {
	// Type is one of "lambertian", "metal", "dielectric" or "light".
	Type string `json:"type"`

	Color *vec3.T `json:"color,omitempty"`

	// Texture names an entry of File.Textures.  It overrides Color for
	// lambertian and light materials.
	Texture string `json:"texture,omitempty"`

	Fuzz            float64 `json:"fuzz,omitempty"`
	RefractiveIndex float64 `json:"refractive_index,omitempty"`
}

type ObjectSpec struct {
	// Type is one of "sphere", "quad" or "box".
	Type     string `json:"type"`
	Material string `json:"material"`

	Center  *vec3.T `json:"center,omitempty"`
	Center1 *vec3.T `json:"center1,omitempty"`
	Radius  float64 `json:"radius,omitempty"`

	Q *vec3.T `json:"q,omitempty"`
	U *vec3.T `json:"u,omitempty"`
	V *vec3.T `json:"v,omitempty"`

	A *vec3.T `json:"a,omitempty"`
	B *vec3.T `json:"b,omitempty"`
}

// LoadScene reads and builds a JSON scene file.  The scene is named after
// the file.
func LoadScene(ctx context.Context, fileName string, rng *rand.Rand) (*scene.Scene, error) {
	tracer := otel.Tracer("harpoon/scenepack")
	var span trace.Span
	_, span = tracer.Start(ctx, "LoadScene")
	defer span.End()

	fileBytes, err := os.ReadFile(fileName)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("while opening scene file: %w", err)
	}

	s, err := Parse(fileName, fileBytes, rng)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return s, nil
}

// Parse builds a scene from JSON.  Relative image paths are resolved against
// the directory of name first.
func Parse(name string, data []byte, rng *rand.Rand) (*scene.Scene, error) {
	f := &File{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, xerrors.Errorf("while unmarshaling scene file: %w", &Error{Scene: name, Err: err})
	}

	b := &fileBuilder{
		name:      name,
		dir:       filepath.Dir(name),
		file:      f,
		rng:       rng,
		textures:  map[string]texture.Map{},
		materials: map[string]contact.Material{},
	}
	return b.build()
}

type fileBuilder struct {
	name string
	dir  string
	file *File
	rng  *rand.Rand

	textures  map[string]texture.Map
	materials map[string]contact.Material
}

func (b *fileBuilder) fail(field string, format string, args ...interface{}) error {
	return xerrors.Errorf("while building scene: %w", &Error{
		Scene: b.name,
		Field: field,
		Err:   fmt.Errorf(format, args...),
	})
}

func (b *fileBuilder) build() (*scene.Scene, error) {
	// Noise textures draw from rng, and the first bad entry is the one
	// reported, so build in a fixed order.
	for _, name := range sortedKeys(b.file.Textures) {
		t, err := b.texture("textures."+name, b.file.Textures[name])
		if err != nil {
			return nil, err
		}
		b.textures[name] = t
	}

	for _, name := range sortedKeys(b.file.Materials) {
		m, err := b.material("materials."+name, b.file.Materials[name])
		if err != nil {
			return nil, err
		}
		b.materials[name] = m
	}

	if len(b.file.Objects) == 0 {
		return nil, b.fail("objects", "scene has no objects")
	}

	world := geometry.NewList()
	for i, spec := range b.file.Objects {
		g, err := b.object(fmt.Sprintf("objects[%d]", i), spec)
		if err != nil {
			return nil, err
		}
		world.Add(g)
	}

	background, err := b.background()
	if err != nil {
		return nil, err
	}

	cs := b.file.Camera
	if cs.LookFrom == cs.LookAt {
		return nil, b.fail("camera", "look_from and look_at coincide")
	}
	cfg := camera.ThinLensConfig{
		LookFrom:      cs.LookFrom,
		LookAt:        cs.LookAt,
		VFOV:          cs.VFOV,
		DefocusAngle:  cs.ApertureAngle,
		FocusDistance: cs.FocusDistance,
	}
	if cs.VUp != nil {
		cfg.VUp = *cs.VUp
	}
	aspect := cs.AspectRatio
	if aspect <= 0 {
		aspect = wideAspect
	}

	return &scene.Scene{
		Name:        b.name,
		World:       bvh.FromList(world),
		Background:  background,
		Camera:      camera.NewThinLens(cfg),
		AspectRatio: aspect,
	}, nil
}

func (b *fileBuilder) background() (func(ray.Ray) vec3.T, error) {
	raw := b.file.Background
	if len(raw) == 0 {
		return scene.SkyGradient, nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name != "sky" {
			return nil, b.fail("background", "unknown background %q", name)
		}
		return scene.SkyGradient, nil
	}

	var color vec3.T
	if err := json.Unmarshal(raw, &color); err != nil {
		return nil, b.fail("background", "want \"sky\" or [r, g, b]: %v", err)
	}
	return scene.SolidBackground(color), nil
}

func (b *fileBuilder) texture(field string, spec TextureSpec) (texture.Map, error) {
	switch spec.Type {
	case "solid":
		if spec.Color == nil {
			return nil, b.fail(field, "solid texture needs a color")
		}
		return texture.Constant(*spec.Color), nil
	case "checker":
		if spec.Even == nil || spec.Odd == nil {
			return nil, b.fail(field, "checker texture needs even and odd colors")
		}
		scale := spec.Scale
		if scale <= 0 {
			scale = 1
		}
		return texture.Checker(scale, texture.Constant(*spec.Even), texture.Constant(*spec.Odd)), nil
	case "noise":
		scale := spec.Scale
		if scale <= 0 {
			scale = 1
		}
		return texture.Noise(texture.NewPerlin(b.rng), scale), nil
	case "image":
		if spec.Path == "" {
			return nil, b.fail(field, "image texture needs a path")
		}
		img, err := texture.LoadImage(filepath.Join(b.dir, spec.Path))
		if err != nil {
			img, err = texture.LoadImage(spec.Path)
		}
		if err != nil {
			return nil, b.fail(field, "while loading image: %w", err)
		}
		return texture.Image(img), nil
	default:
		return nil, b.fail(field, "unknown texture type %q", spec.Type)
	}
}

// albedo resolves the color source of a textured material.
func (b *fileBuilder) albedo(field string, spec MaterialSpec) (texture.Map, error) {
	if spec.Texture != "" {
		t, ok := b.textures[spec.Texture]
		if !ok {
			return nil, b.fail(field, "unknown texture %q", spec.Texture)
		}
		return t, nil
	}
	if spec.Color == nil {
		return nil, b.fail(field, "%s material needs a color or texture", spec.Type)
	}
	return texture.Constant(*spec.Color), nil
}

func (b *fileBuilder) material(field string, spec MaterialSpec) (contact.Material, error) {
	switch spec.Type {
	case "lambertian":
		albedo, err := b.albedo(field, spec)
		if err != nil {
			return nil, err
		}
		return &material.Lambertian{Albedo: albedo}, nil
	case "metal":
		if spec.Color == nil {
			return nil, b.fail(field, "metal material needs a color")
		}
		return material.NewMetal(*spec.Color, spec.Fuzz), nil
	case "dielectric":
		if spec.RefractiveIndex <= 0 {
			return nil, b.fail(field, "dielectric material needs a positive refractive_index")
		}
		return material.NewDielectric(spec.RefractiveIndex), nil
	case "light":
		emit, err := b.albedo(field, spec)
		if err != nil {
			return nil, err
		}
		return &material.DiffuseLight{Emit: emit}, nil
	default:
		return nil, b.fail(field, "unknown material type %q", spec.Type)
	}
}

func (b *fileBuilder) object(field string, spec ObjectSpec) (geometry.Geometry, error) {
	mtl, ok := b.materials[spec.Material]
	if !ok {
		return nil, b.fail(field, "unknown material %q", spec.Material)
	}

	switch spec.Type {
	case "sphere":
		if spec.Center == nil {
			return nil, b.fail(field, "sphere needs a center")
		}
		if spec.Center1 != nil {
			return geometry.NewMovingSphere(*spec.Center, *spec.Center1, spec.Radius, mtl), nil
		}
		return geometry.NewSphere(*spec.Center, spec.Radius, mtl), nil
	case "quad":
		if spec.Q == nil || spec.U == nil || spec.V == nil {
			return nil, b.fail(field, "quad needs q, u and v")
		}
		if vec3.CProd(*spec.U, *spec.V).NearZero() {
			return nil, b.fail(field, "quad edges u and v are parallel")
		}
		return geometry.NewQuad(*spec.Q, *spec.U, *spec.V, mtl), nil
	case "box":
		if spec.A == nil || spec.B == nil {
			return nil, b.fail(field, "box needs corners a and b")
		}
		return geometry.NewBox(*spec.A, *spec.B, mtl), nil
	default:
		return nil, b.fail(field, "unknown object type %q", spec.Type)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
