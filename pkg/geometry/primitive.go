package geometry

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// Primitive is an analytic surface that can take part in boolean
// composition. The set of implementations is closed: Quadric, Plane, Quad,
// Triangle, Mesh and Model.
type Primitive interface {
	// Intersect returns the nearest crossing in front of the ray origin
	Intersect(ray core.Ray) Intersection
	// Intersections returns every crossing in front of the origin, sorted
	Intersections(ray core.Ray) []Intersection
	// ClipsPoint reports whether point lies inside the solid
	ClipsPoint(point core.Vec3) bool

	// Translate, Rotate and Scale update the analytic parameters in place
	Translate(offset core.Vec3)
	Rotate(degrees float64, axis core.Vec3)
	Scale(factors core.Vec3)

	// Clone returns an independent deep copy
	Clone() Primitive

	primitive()
}

// MaterialHolder is implemented by primitives that keep their own per-part
// materials (mesh triangles). The owning shape uses it to keep references
// valid when materials are replaced or erased.
type MaterialHolder interface {
	ReplaceMaterial(old, replacement *material.Material)
	RemapMaterials(mapping map[*material.Material]*material.Material)
}

// Compile-time check that the variants implement Primitive
var (
	_ Primitive = (*Quadric)(nil)
	_ Primitive = (*Plane)(nil)
	_ Primitive = (*Quad)(nil)
	_ Primitive = (*Triangle)(nil)
	_ Primitive = (*Mesh)(nil)
	_ Primitive = (*Model)(nil)

	_ MaterialHolder = (*Mesh)(nil)
	_ MaterialHolder = (*Model)(nil)
)
