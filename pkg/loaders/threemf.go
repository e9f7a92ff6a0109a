package loaders

import (
	"fmt"

	"github.com/hpinc/go3mf"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
)

// Import3MF loads the mesh objects of a 3MF package. Component objects and
// build item transforms are ignored.
func Import3MF(path string) (*geometry.Model, error) {
	reader, err := go3mf.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open 3mf: %w", err)
	}
	defer reader.Close()

	var model go3mf.Model
	if err := reader.Decode(&model); err != nil {
		return nil, fmt.Errorf("decode 3mf: %w", err)
	}
	return modelFrom3MF(&model)
}

func modelFrom3MF(model *go3mf.Model) (*geometry.Model, error) {
	var meshes []geometry.Mesh
	for _, obj := range model.Resources.Objects {
		if obj.Mesh == nil {
			continue
		}

		positions := make([]core.Vec3, len(obj.Mesh.Vertices.Vertex))
		for i, v := range obj.Mesh.Vertices.Vertex {
			positions[i] = core.NewVec3(float64(v.X()), float64(v.Y()), float64(v.Z()))
		}

		indices := make([]int, 0, 3*len(obj.Mesh.Triangles.Triangle))
		for _, t := range obj.Mesh.Triangles.Triangle {
			indices = append(indices, int(t.V1), int(t.V2), int(t.V3))
		}

		mesh, err := indexedMesh(positions, nil, indices)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", obj.ID, err)
		}
		meshes = append(meshes, *mesh)
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("no mesh objects found")
	}
	return geometry.NewModel(meshes), nil
}
