package geometry

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// Model is a group of meshes, typically produced by a model importer.
// An empty model signals a failed import.
type Model struct {
	Meshes []Mesh
}

// NewModel creates a model from meshes
func NewModel(meshes []Mesh) *Model {
	return &Model{Meshes: meshes}
}

// IsEmpty reports whether the model holds no triangles
func (m *Model) IsEmpty() bool {
	return m.TriangleCount() == 0
}

// TriangleCount returns the number of triangles across all meshes
func (m *Model) TriangleCount() int {
	count := 0
	for i := range m.Meshes {
		count += len(m.Meshes[i].Triangles)
	}
	return count
}

// SetSmooth switches smooth shading for every mesh
func (m *Model) SetSmooth(smooth bool) {
	for i := range m.Meshes {
		m.Meshes[i].Smooth = smooth
	}
}

// Smooth reports whether the model is smooth shaded (its first mesh is)
func (m *Model) Smooth() bool {
	return len(m.Meshes) > 0 && m.Meshes[0].Smooth
}

// Intersect returns the nearest hit over all meshes
func (m *Model) Intersect(ray core.Ray) Intersection {
	var nearest Intersection
	for i := range m.Meshes {
		hit := m.Meshes[i].Intersect(ray)
		if hit.Hit() && (!nearest.Hit() || hit.T < nearest.T) {
			nearest = hit
		}
	}
	return nearest
}

// Intersections merges the sequences of every mesh
func (m *Model) Intersections(ray core.Ray) []Intersection {
	var result []Intersection
	for i := range m.Meshes {
		result = append(result, m.Meshes[i].Intersections(ray)...)
	}
	Sort(result)
	return Dedup(result)
}

// ClipsPoint reports whether any mesh clips the point
func (m *Model) ClipsPoint(point core.Vec3) bool {
	for i := range m.Meshes {
		if m.Meshes[i].ClipsPoint(point) {
			return true
		}
	}
	return false
}

// Translate moves every mesh
func (m *Model) Translate(offset core.Vec3) {
	for i := range m.Meshes {
		m.Meshes[i].Translate(offset)
	}
}

// Rotate turns every mesh around an axis through the origin
func (m *Model) Rotate(degrees float64, axis core.Vec3) {
	for i := range m.Meshes {
		m.Meshes[i].Rotate(degrees, axis)
	}
}

// Scale stretches every mesh about the origin
func (m *Model) Scale(factors core.Vec3) {
	for i := range m.Meshes {
		m.Meshes[i].Scale(factors)
	}
}

// ReplaceMaterial swaps triangle material references in every mesh
func (m *Model) ReplaceMaterial(old, replacement *material.Material) {
	for i := range m.Meshes {
		m.Meshes[i].ReplaceMaterial(old, replacement)
	}
}

// RemapMaterials rewrites triangle materials in every mesh
func (m *Model) RemapMaterials(mapping map[*material.Material]*material.Material) {
	for i := range m.Meshes {
		m.Meshes[i].RemapMaterials(mapping)
	}
}

// Clone returns a deep copy of the model
func (m *Model) Clone() Primitive {
	clone := &Model{Meshes: make([]Mesh, len(m.Meshes))}
	for i := range m.Meshes {
		clone.Meshes[i] = *m.Meshes[i].Clone().(*Mesh)
	}
	return clone
}

func (m *Model) primitive() {}
