// Package scenepack builds scenes, either from the built-in catalogue or from
// JSON scene files.
package scenepack

import (
	"context"
	"math/rand"
	"sort"

	"harpoon/scene"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/xerrors"
)

// Error describes a scene that could not be built.
type Error struct {
	Scene string

	// Field locates the problem within a scene file, e.g. "materials.glass".
	// It is empty for problems with the scene as a whole.
	Field string

	Err error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "scene " + e.Scene + ": " + e.Err.Error()
	}
	return "scene " + e.Scene + ": " + e.Field + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrUnknownScene is wrapped in an *Error when Builtin is given a bad name.
var ErrUnknownScene = xerrors.New("no such built-in scene")

type builder func(rng *rand.Rand) (*scene.Scene, error)

var builtins = map[string]builder{
	"bouncing-spheres":  bouncingSpheres,
	"checkered-spheres": checkeredSpheres,
	"earth":             earth,
	"perlin-spheres":    perlinSpheres,
	"quads":             quads,
	"simple-light":      simpleLight,
	"cornell-box":       cornellBox,
	"final-weekend":     finalWeekend,
}

// Names lists the built-in scenes in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin constructs the named built-in scene.  Scenes with random content
// draw it from rng, so the same seed gives the same scene.
func Builtin(ctx context.Context, name string, rng *rand.Rand) (*scene.Scene, error) {
	tracer := otel.Tracer("harpoon/scenepack")
	var span trace.Span
	_, span = tracer.Start(ctx, "Builtin")
	defer span.End()

	span.SetAttributes(attribute.String("scene", name))

	b, ok := builtins[name]
	if !ok {
		err := xerrors.Errorf("while looking up scene: %w", &Error{Scene: name, Err: ErrUnknownScene})
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s, err := b(rng)
	if err != nil {
		err = xerrors.Errorf("while building scene: %w", &Error{Scene: name, Err: err})
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.Name = name

	span.SetStatus(codes.Ok, "")
	return s, nil
}
