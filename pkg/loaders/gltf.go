package loaders

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
)

// ImportGLTF loads a glTF or GLB file. Each triangle primitive becomes a
// mesh; node transforms are not applied.
func ImportGLTF(path string) (*geometry.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return modelFromGLTF(doc)
}

func modelFromGLTF(doc *gltf.Document) (*geometry.Model, error) {
	var meshes []geometry.Mesh
	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				// Skip non-triangle primitives (lines, points, etc)
				continue
			}
			mesh, err := gltfPrimitiveMesh(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
			if mesh != nil {
				meshes = append(meshes, *mesh)
			}
		}
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("no triangle meshes found")
	}
	return geometry.NewModel(meshes), nil
}

func gltfPrimitiveMesh(doc *gltf.Document, prim *gltf.Primitive) (*geometry.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []core.Vec3
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = readVec3Accessor(doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var indices []int
	if prim.Indices != nil {
		indices, err = readIndices(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, assume sequential triangles
		indices = make([]int, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = i
		}
	}
	return indexedMesh(positions, normals, indices)
}

// accessorBytes returns the buffer data an accessor reads from, its start
// offset and its element stride
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elementSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elementSize
	}
	if accessor.Count > 0 && start+(accessor.Count-1)*stride+elementSize > len(buffer.Data) {
		return nil, 0, 0, fmt.Errorf("accessor reads past the end of its buffer")
	}
	return buffer.Data, start, stride, nil
}

// readVec3Accessor reads float VEC3 data
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]core.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v / %v", accessor.Type, accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]core.Vec3, accessor.Count)
	for i := range result {
		offset := start + i*stride
		result[i] = core.NewVec3(
			readFloat32(data[offset:]),
			readFloat32(data[offset+4:]),
			readFloat32(data[offset+8:]),
		)
	}
	return result, nil
}

// readIndices reads unsigned scalar index data
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		offset := start + i*stride
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		default:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}

// readFloat32 reads a little-endian float32
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}
