package scenepack

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"harpoon/ray"
	"harpoon/texture"
	"harpoon/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
)

func TestNames(t *testing.T) {
	names := Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() = %v, not sorted", names)
	}
	for _, want := range []string{"bouncing-spheres", "cornell-box", "final-weekend", "quads"} {
		i := sort.SearchStrings(names, want)
		if i == len(names) || names[i] != want {
			t.Errorf("Names() = %v, missing %q", names, want)
		}
	}
}

func TestUnknownBuiltin(t *testing.T) {
	_, err := Builtin(context.Background(), "no-such-scene", rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatalf("Expected an error")
	}

	var se *Error
	if !xerrors.As(err, &se) {
		t.Fatalf("Expected a *scenepack.Error, got %v", err)
	}
	if se.Scene != "no-such-scene" {
		t.Errorf("Error names scene %q, want %q", se.Scene, "no-such-scene")
	}
	if !xerrors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

// traceCenter fires a ray from the camera through the image center.
func traceCenter(t *testing.T, name string) {
	t.Helper()
	s, err := Builtin(context.Background(), name, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Error building %q: %v", name, err)
	}
	if s.Name != name {
		t.Errorf("Scene name = %q, want %q", s.Name, name)
	}
	if s.AspectRatio <= 0 {
		t.Errorf("Scene %q has aspect ratio %v", name, s.AspectRatio)
	}
	if s.World.GetAABox().IsEmpty() {
		t.Errorf("Scene %q has an empty world", name)
	}

	rng := rand.New(rand.NewSource(1))
	r := s.Camera.ImageToRay(50, 100, 50, 100, rng)
	if _, ok := s.World.RayInto(ray.RaySegment{TheRay: r, TheSegment: ray.Span{Lo: 0.001, Hi: 1e9}}); !ok {
		t.Errorf("Center ray of %q hit nothing", name)
	}
}

func TestBuiltins(t *testing.T) {
	for _, name := range Names() {
		if name == "earth" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			traceCenter(t, name)
		})
	}
}

func writePNG(t *testing.T, name string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(60 * x), G: uint8(100 * y), B: 200, A: 255})
		}
	}

	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Error creating image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Error encoding image: %v", err)
	}
}

func TestEarth(t *testing.T) {
	dir := t.TempDir()
	// The decoder sniffs the format, so a PNG under the expected name works.
	writePNG(t, filepath.Join(dir, "earthmap.jpg"))
	t.Setenv(texture.ImageSearchEnv, dir)

	traceCenter(t, "earth")
}

func TestBuiltinDeterministic(t *testing.T) {
	a, err := Builtin(context.Background(), "final-weekend", rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := Builtin(context.Background(), "final-weekend", rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(a.World.GetAABox(), b.World.GetAABox()); diff != "" {
		t.Errorf("Same seed gave different worlds; diff (-got +want)\n%s", diff)
	}
}

const goodScene = `{
  "camera": {"look_from": [0, 0, 5], "look_at": [0, 0, 0], "vfov": 40, "aspect_ratio": 2},
  "background": [0.1, 0.2, 0.3],
  "textures": {
    "floor": {"type": "checker", "scale": 0.5, "even": [0, 0, 0], "odd": [1, 1, 1]},
    "marble": {"type": "noise", "scale": 4}
  },
  "materials": {
    "ground": {"type": "lambertian", "texture": "floor"},
    "stone": {"type": "lambertian", "texture": "marble"},
    "glass": {"type": "dielectric", "refractive_index": 1.5},
    "steel": {"type": "metal", "color": [0.8, 0.8, 0.9], "fuzz": 0.1},
    "lamp": {"type": "light", "color": [4, 4, 4]}
  },
  "objects": [
    {"type": "sphere", "material": "glass", "center": [0, 0, 0], "radius": 1},
    {"type": "sphere", "material": "stone", "center": [2, 0, 0], "center1": [2, 0.5, 0], "radius": 0.5},
    {"type": "sphere", "material": "ground", "center": [0, -1001, 0], "radius": 1000},
    {"type": "quad", "material": "lamp", "q": [-1, 3, -1], "u": [2, 0, 0], "v": [0, 0, 2]},
    {"type": "box", "material": "steel", "a": [-3, -1, -1], "b": [-2, 0, 0]}
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse("good.json", []byte(goodScene), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.AspectRatio != 2 {
		t.Errorf("AspectRatio = %v, want 2", s.AspectRatio)
	}
	if diff := cmp.Diff(s.Background(ray.Ray{}), vec3.T{0.1, 0.2, 0.3}); diff != "" {
		t.Errorf("Bad background; diff (-got +want)\n%s", diff)
	}

	r := s.Camera.ImageToRay(50, 100, 50, 100, rand.New(rand.NewSource(1)))
	c, ok := s.World.RayInto(ray.RaySegment{TheRay: r, TheSegment: ray.Span{Lo: 0.001, Hi: 1e9}})
	if !ok {
		t.Fatalf("Center ray missed the glass sphere")
	}
	if dist := c.T * r.Slope.Norm(); dist < 3.95 || dist > 4.05 {
		t.Errorf("Center ray hit at distance %v, want about 4", dist)
	}
}

func TestLoadScene(t *testing.T) {
	name := filepath.Join(t.TempDir(), "good.json")
	if err := os.WriteFile(name, []byte(goodScene), 0644); err != nil {
		t.Fatalf("Error writing scene: %v", err)
	}

	s, err := LoadScene(context.Background(), name, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Name != name {
		t.Errorf("Scene name = %q, want %q", s.Name, name)
	}

	if _, err := LoadScene(context.Background(), name+".missing", rand.New(rand.NewSource(1))); !xerrors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		desc      string
		scene     string
		wantField string
	}{
		{
			desc:      "unknown material",
			scene:     `{"camera": {"look_from": [0, 0, 1]}, "materials": {}, "objects": [{"type": "sphere", "material": "nope", "center": [0, 0, 0], "radius": 1}]}`,
			wantField: "objects[0]",
		},
		{
			desc:      "unknown material type",
			scene:     `{"camera": {"look_from": [0, 0, 1]}, "materials": {"m": {"type": "plastic"}}, "objects": [{"type": "sphere", "material": "m", "center": [0, 0, 0], "radius": 1}]}`,
			wantField: "materials.m",
		},
		{
			desc:      "unknown texture",
			scene:     `{"camera": {"look_from": [0, 0, 1]}, "materials": {"m": {"type": "lambertian", "texture": "t"}}, "objects": []}`,
			wantField: "materials.m",
		},
		{
			desc:      "no objects",
			scene:     `{"camera": {"look_from": [0, 0, 1]}, "materials": {}, "objects": []}`,
			wantField: "objects",
		},
		{
			desc:      "parallel quad",
			scene:     `{"camera": {"look_from": [0, 0, 1]}, "materials": {"m": {"type": "metal", "color": [1, 1, 1]}}, "objects": [{"type": "quad", "material": "m", "q": [0, 0, 0], "u": [1, 0, 0], "v": [2, 0, 0]}]}`,
			wantField: "objects[0]",
		},
		{
			desc:      "bad background",
			scene:     `{"camera": {"look_from": [0, 0, 1]}, "background": "purple", "materials": {"m": {"type": "metal", "color": [1, 1, 1]}}, "objects": [{"type": "sphere", "material": "m", "center": [0, 0, 0], "radius": 1}]}`,
			wantField: "background",
		},
		{
			desc:      "degenerate camera",
			scene:     `{"camera": {}, "materials": {"m": {"type": "metal", "color": [1, 1, 1]}}, "objects": [{"type": "sphere", "material": "m", "center": [0, 0, 0], "radius": 1}]}`,
			wantField: "camera",
		},
		{
			desc:      "image without path",
			scene:     `{"camera": {"look_from": [0, 0, 1]}, "textures": {"t": {"type": "image"}}, "materials": {}, "objects": []}`,
			wantField: "textures.t",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Parse("bad.json", []byte(tc.scene), rand.New(rand.NewSource(1)))
			if err == nil {
				t.Fatalf("Expected an error")
			}
			var se *Error
			if !xerrors.As(err, &se) {
				t.Fatalf("Expected a *scenepack.Error, got %v", err)
			}
			if se.Field != tc.wantField {
				t.Errorf("Error field = %q, want %q (err: %v)", se.Field, tc.wantField, err)
			}
		})
	}
}

func TestParseReportsFirstBadMaterial(t *testing.T) {
	scene := `{"camera": {"look_from": [0, 0, 1]}, "materials": {"d": {"type": "plastic"}, "b": {"type": "wax"}, "c": {"type": "clay"}}, "objects": []}`

	// Map iteration order varies between runs, so repeat.
	for i := 0; i < 20; i++ {
		_, err := Parse("bad.json", []byte(scene), rand.New(rand.NewSource(1)))
		var se *Error
		if !xerrors.As(err, &se) {
			t.Fatalf("Expected a *scenepack.Error, got %v", err)
		}
		if se.Field != "materials.b" {
			t.Fatalf("Error field = %q, want %q", se.Field, "materials.b")
		}
	}
}

func TestParseBadJSON(t *testing.T) {
	_, err := Parse("bad.json", []byte(`{"objects": [`), rand.New(rand.NewSource(1)))
	var se *Error
	if !xerrors.As(err, &se) {
		t.Fatalf("Expected a *scenepack.Error, got %v", err)
	}
	if se.Field != "" {
		t.Errorf("Error field = %q, want empty", se.Field)
	}
}
