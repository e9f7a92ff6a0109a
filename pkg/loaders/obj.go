package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/geometry"
)

// ImportOBJ loads a Wavefront OBJ file. Each object or group becomes a mesh;
// polygons are fan triangulated.
func ImportOBJ(path string) (*geometry.Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()
	return ReadOBJ(file)
}

// objGroup collects the corners of one mesh. Normals are only kept when
// every corner references one.
type objGroup struct {
	positions []core.Vec3
	normals   []core.Vec3
	indices   []int
	allNormal bool
}

func newOBJGroup() *objGroup {
	return &objGroup{allNormal: true}
}

// ReadOBJ decodes OBJ text
func ReadOBJ(r io.Reader) (*geometry.Model, error) {
	var (
		vertices []core.Vec3
		normals  []core.Vec3
		meshes   []geometry.Mesh
		group    = newOBJGroup()
	)

	flush := func() error {
		if len(group.indices) == 0 {
			return nil
		}
		var groupNormals []core.Vec3
		if group.allNormal {
			groupNormals = group.normals
		}
		mesh, err := indexedMesh(group.positions, groupNormals, group.indices)
		if err != nil {
			return err
		}
		meshes = append(meshes, *mesh)
		group = newOBJGroup()
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vertices = append(vertices, v)
		case "vn":
			n, err := parseVec(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, n)
		case "o", "g":
			if err := flush(); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			polygon := make([]int, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				pos, norm, err := parseCorner(corner, len(vertices), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				polygon = append(polygon, len(group.positions))
				group.positions = append(group.positions, vertices[pos])
				if norm >= 0 {
					group.normals = append(group.normals, normals[norm])
				} else {
					group.allNormal = false
					group.normals = append(group.normals, core.Vec3{})
				}
			}
			group.indices = append(group.indices, fan(polygon)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("no faces found")
	}
	return geometry.NewModel(meshes), nil
}

func parseVec(fields []string) (core.Vec3, error) {
	if len(fields) < 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return core.Vec3{}, err
		}
		xyz[i] = v
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

// parseCorner resolves a "v", "v/vt", "v//vn" or "v/vt/vn" reference to
// zero-based position and normal indices; the normal index is -1 when absent.
// Negative OBJ indices count back from the end.
func parseCorner(corner string, vertexCount, normalCount int) (pos, norm int, err error) {
	parts := strings.Split(corner, "/")

	pos, err = objIndex(parts[0], vertexCount)
	if err != nil {
		return 0, 0, fmt.Errorf("vertex %q: %w", corner, err)
	}

	norm = -1
	if len(parts) >= 3 && parts[2] != "" {
		norm, err = objIndex(parts[2], normalCount)
		if err != nil {
			return 0, 0, fmt.Errorf("normal %q: %w", corner, err)
		}
	}
	return pos, norm, nil
}

func objIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += count
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index out of range")
	}
	return i, nil
}
