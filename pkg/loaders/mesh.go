package loaders

import (
	"path/filepath"
	"strings"

	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/pkg/errors"
)

// LoadMeshFile loads a triangle mesh, choosing the format by file extension
func LoadMeshFile(path string) ([]*geometry.Triangle, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return LoadSTLFile(path)
	case ".ply":
		return LoadPLYFile(path)
	default:
		return nil, errors.Errorf("unsupported mesh format %q", ext)
	}
}
