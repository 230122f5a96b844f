package reader

import (
	"fmt"
	"strings"

	"github.com/arjpeg/raytracer/asset"
	"github.com/arjpeg/raytracer/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or an http(s) URL.
func ReadScene(filename string) (*scene.Scene, error) {
	reader, err := readerFor(filename)
	if err != nil {
		return nil, err
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}

// Select reader based on file extension
func readerFor(filename string) (Reader, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return newYamlSceneReader(), nil
	case strings.HasSuffix(lower, ".zip"):
		return newZipSceneReader(), nil
	}
	return nil, fmt.Errorf("readScene: unsupported file format")
}
