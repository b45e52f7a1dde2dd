package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// ImageSearchEnv names a directory that is searched first by LoadImage.
const ImageSearchEnv = "HARPOON_IMAGES"

// ImageSearchPaths lists the candidate locations for a texture file, in the
// order LoadImage tries them.
func ImageSearchPaths(name string) []string {
	paths := []string{}
	if dir := os.Getenv(ImageSearchEnv); dir != "" {
		paths = append(paths, filepath.Join(dir, name))
	}
	paths = append(paths, name)

	prefix := "images"
	for i := 0; i < 7; i++ {
		paths = append(paths, filepath.Join(prefix, name))
		prefix = filepath.Join("..", prefix)
	}
	return paths
}

// LoadImage decodes the first PNG or JPEG found along ImageSearchPaths.
func LoadImage(name string) (image.Image, error) {
	for _, p := range ImageSearchPaths(name) {
		img, err := decodeFile(p)
		if err == nil {
			return img, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("while decoding %q: %w", p, err)
		}
	}
	return nil, fmt.Errorf("image %q not found in any search path: %w", name, os.ErrNotExist)
}

func decodeFile(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
