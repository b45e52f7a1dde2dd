package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"harpoon/rgbimage"
	"harpoon/vmath/vec3"
)

func TestInspect(t *testing.T) {
	im := rgbimage.New(2, 3)
	im.Scene = "quads"
	im.MaxDepth = 7
	im.RecordSample(0, 0, vec3.T{1, 1, 1})
	im.RecordSample(1, 2, vec3.T{1, 1, 1})
	im.RecordSample(1, 2, vec3.T{1, 1, 1})

	name := filepath.Join(t.TempDir(), "out.harpoon")
	if err := rgbimage.WriteToFile(im, name); err != nil {
		t.Fatalf("Error writing accumulator: %v", err)
	}

	var out bytes.Buffer
	if err := inspect(&out, name); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{`"quads"`, "max_depth", "pixels: 6", "samples: 3", "mean samples per pixel: 0.50"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("inspect output missing %q:\n%s", want, out.String())
		}
	}
}

func TestInspectCorruptFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.harpoon")
	if err := os.WriteFile(name, bytes.Repeat([]byte{0xff}, 16), 0644); err != nil {
		t.Fatalf("Error writing file: %v", err)
	}

	var out bytes.Buffer
	if err := inspect(&out, name); err == nil {
		t.Errorf("Expected an error inspecting a corrupt file")
	}
	if out.Len() != 0 {
		t.Errorf("inspect printed output for a corrupt file:\n%s", out.String())
	}
}
