package geometry

import (
	"math"

	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// Mesh is a triangle soup with an axis-aligned bounding box made of six
// quads. Rays that miss the box skip the triangle scan.
type Mesh struct {
	Triangles []Triangle
	Smooth    bool // Interpolate vertex normals

	box    [6]Quad
	bounds [2]core.Vec3
}

// NewMesh creates a mesh from triangles
func NewMesh(triangles []Triangle, smooth bool) *Mesh {
	m := &Mesh{
		Triangles: triangles,
		Smooth:    smooth,
	}
	m.UpdateBounds()
	return m
}

// Bounds returns the minimum and maximum corners of the bounding box
func (m *Mesh) Bounds() (minCorner, maxCorner core.Vec3) {
	return m.bounds[0], m.bounds[1]
}

// UpdateBounds recomputes the bounding box; call it after editing Triangles
func (m *Mesh) UpdateBounds() {
	if len(m.Triangles) == 0 {
		m.bounds = [2]core.Vec3{}
		m.box = [6]Quad{}
		return
	}

	lo := core.NewVec3(math.Inf(1), math.Inf(1), math.Inf(1))
	hi := core.NewVec3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for i := range m.Triangles {
		tri := &m.Triangles[i]
		for _, v := range [3]core.Vec3{tri.V1, tri.V2, tri.V3} {
			lo = lo.Min(v)
			hi = hi.Max(v)
		}
	}
	m.bounds = [2]core.Vec3{lo, hi}

	size := hi.Subtract(lo)
	m.box = [6]Quad{
		// front
		*NewQuad(lo, core.NewVec3(0, 0, -1), core.NewVec3(size.X, size.Y, 0)),
		// back
		*NewQuad(core.NewVec3(lo.X, lo.Y, hi.Z), core.NewVec3(0, 0, 1), core.NewVec3(size.X, size.Y, 0)),
		// left
		*NewQuad(lo, core.NewVec3(-1, 0, 0), core.NewVec3(0, size.Y, size.Z)),
		// right
		*NewQuad(core.NewVec3(hi.X, lo.Y, lo.Z), core.NewVec3(1, 0, 0), core.NewVec3(0, size.Y, size.Z)),
		// top
		*NewQuad(core.NewVec3(lo.X, hi.Y, lo.Z), core.NewVec3(0, 1, 0), core.NewVec3(size.X, 0, size.Z)),
		// bottom
		*NewQuad(lo, core.NewVec3(0, -1, 0), core.NewVec3(size.X, 0, size.Z)),
	}
}

// hitsBox reports whether the ray crosses any face of the bounding box
func (m *Mesh) hitsBox(ray core.Ray) bool {
	for i := range m.box {
		if m.box[i].Intersect(ray).Hit() {
			return true
		}
	}
	return false
}

func (m *Mesh) intersectTriangle(tri *Triangle, ray core.Ray) Intersection {
	if m.Smooth {
		return tri.IntersectSmooth(ray)
	}
	return tri.Intersect(ray)
}

// Intersect returns the nearest triangle hit
func (m *Mesh) Intersect(ray core.Ray) Intersection {
	if len(m.Triangles) == 0 || !m.hitsBox(ray) {
		return Intersection{}
	}

	var nearest Intersection
	for i := range m.Triangles {
		hit := m.intersectTriangle(&m.Triangles[i], ray)
		if hit.Hit() && (!nearest.Hit() || hit.T < nearest.T) {
			nearest = hit
		}
	}
	return nearest
}

// Intersections returns every triangle crossing, sorted. Each triangle
// contributes a single Entry or Exit according to its orientation; hits of
// triangles sharing the crossed edge collapse into one.
func (m *Mesh) Intersections(ray core.Ray) []Intersection {
	var result []Intersection
	for i := range m.Triangles {
		if hit := m.intersectTriangle(&m.Triangles[i], ray); hit.Hit() {
			result = append(result, hit)
		}
	}
	Sort(result)
	return Dedup(result)
}

// ClipsPoint reports whether any triangle clips the point
func (m *Mesh) ClipsPoint(point core.Vec3) bool {
	for i := range m.Triangles {
		if m.Triangles[i].ClipsPoint(point) {
			return true
		}
	}
	return false
}

// Translate moves every triangle
func (m *Mesh) Translate(offset core.Vec3) {
	for i := range m.Triangles {
		m.Triangles[i].Translate(offset)
	}
	m.UpdateBounds()
}

// Rotate turns every triangle around an axis through the origin
func (m *Mesh) Rotate(degrees float64, axis core.Vec3) {
	for i := range m.Triangles {
		m.Triangles[i].Rotate(degrees, axis)
	}
	m.UpdateBounds()
}

// Scale stretches every triangle about the origin
func (m *Mesh) Scale(factors core.Vec3) {
	for i := range m.Triangles {
		m.Triangles[i].Scale(factors)
	}
	m.UpdateBounds()
}

// ReplaceMaterial swaps triangle material references
func (m *Mesh) ReplaceMaterial(old, replacement *material.Material) {
	for i := range m.Triangles {
		if m.Triangles[i].Material == old {
			m.Triangles[i].Material = replacement
		}
	}
}

// RemapMaterials rewrites triangle materials through mapping; materials
// missing from the mapping are cleared
func (m *Mesh) RemapMaterials(mapping map[*material.Material]*material.Material) {
	for i := range m.Triangles {
		if m.Triangles[i].Material != nil {
			m.Triangles[i].Material = mapping[m.Triangles[i].Material]
		}
	}
}

// Clone returns a deep copy of the mesh
func (m *Mesh) Clone() Primitive {
	clone := *m
	clone.Triangles = append([]Triangle(nil), m.Triangles...)
	return &clone
}

func (m *Mesh) primitive() {}
