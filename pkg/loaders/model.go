package loaders

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
)

// importer reads a model file into a set of meshes
type importer func(path string) (*geometry.Model, error)

var importers = map[string]importer{
	".obj":  ImportOBJ,
	".ply":  ImportPLY,
	".gltf": ImportGLTF,
	".glb":  ImportGLTF,
	".3mf":  Import3MF,
}

// SupportedExtensions lists the model file extensions ImportModel accepts
func SupportedExtensions() []string {
	exts := lo.Keys(importers)
	slices.Sort(exts)
	return exts
}

// ImportModel loads a model file, choosing the format by extension. On
// failure it returns an empty model together with the error.
func ImportModel(path string) (*geometry.Model, error) {
	ext := strings.ToLower(filepath.Ext(path))
	load, ok := importers[ext]
	if !ok {
		return geometry.NewModel(nil), fmt.Errorf("unsupported model format %q (supported: %s)",
			ext, strings.Join(SupportedExtensions(), ", "))
	}

	model, err := load(path)
	if err != nil {
		return geometry.NewModel(nil), fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	return model, nil
}

// indexedMesh builds a mesh from an indexed triangle list. Vertex normals
// are used, and the mesh smooth shaded, only when there is one per vertex.
func indexedMesh(positions, normals []core.Vec3, indices []int) (*geometry.Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	smooth := len(normals) == len(positions) && len(normals) > 0

	triangles := make([]geometry.Triangle, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		for _, idx := range []int{a, b, c} {
			if idx < 0 || idx >= len(positions) {
				return nil, fmt.Errorf("vertex index %d out of range [0, %d)", idx, len(positions))
			}
		}

		var t *geometry.Triangle
		if smooth {
			t = geometry.NewSmoothTriangle(positions[a], positions[b], positions[c], normals[a], normals[b], normals[c])
		} else {
			t = geometry.NewTriangle(positions[a], positions[b], positions[c])
		}
		triangles = append(triangles, *t)
	}
	return geometry.NewMesh(triangles, smooth), nil
}

// fan splits a polygon into triangles sharing its first vertex
func fan(polygon []int) []int {
	var indices []int
	for i := 1; i+1 < len(polygon); i++ {
		indices = append(indices, polygon[0], polygon[i], polygon[i+1])
	}
	return indices
}
