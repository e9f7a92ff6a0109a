package geometry

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
	"github.com/df07/go-csg-raytracer/pkg/material"
)

// triangleEpsilon rejects near-parallel rays and hits at the ray origin
const triangleEpsilon = 1e-7

// Triangle represents a single triangle defined by three vertices and the
// vertex normals used for smooth shading
type Triangle struct {
	V1, V2, V3 core.Vec3 // The three vertices
	N1, N2, N3 core.Vec3 // Vertex normals
	// Material is only used when the triangle is part of a mesh
	Material *material.Material
}

// NewTriangle creates a flat triangle; every vertex normal is the face normal
func NewTriangle(v1, v2, v3 core.Vec3) *Triangle {
	normal := v2.Subtract(v1).Cross(v3.Subtract(v1)).Normalize()
	return &Triangle{
		V1: v1, V2: v2, V3: v3,
		N1: normal, N2: normal, N3: normal,
	}
}

// NewSmoothTriangle creates a triangle with explicit vertex normals
func NewSmoothTriangle(v1, v2, v3, n1, n2, n3 core.Vec3) *Triangle {
	return &Triangle{
		V1: v1, V2: v2, V3: v3,
		N1: n1.Normalize(), N2: n2.Normalize(), N3: n3.Normalize(),
	}
}

// FaceNormal returns the unit geometric normal (right-handed winding)
func (t *Triangle) FaceNormal() core.Vec3 {
	return t.V2.Subtract(t.V1).Cross(t.V3.Subtract(t.V1)).Normalize()
}

// Intersect tests if a ray intersects with the triangle using the
// Möller-Trumbore algorithm and the flat face normal
func (t *Triangle) Intersect(ray core.Ray) Intersection {
	dist, ok := t.hitDistance(ray)
	if !ok {
		return Intersection{}
	}
	hit := newHit(ray, dist, t.FaceNormal())
	hit.Material = t.Material
	return hit
}

// IntersectSmooth intersects like Intersect but interpolates the vertex
// normals at the hit point
func (t *Triangle) IntersectSmooth(ray core.Ray) Intersection {
	dist, ok := t.hitDistance(ray)
	if !ok {
		return Intersection{}
	}

	point := ray.At(dist)
	b1, b2, b3, ok := t.barycentric(point)
	if !ok {
		return t.Intersect(ray)
	}

	normal := t.N1.Multiply(b3).Add(t.N2.Multiply(b1)).Add(t.N3.Multiply(b2))
	if normal.IsZero() {
		normal = t.FaceNormal()
	}

	hit := newHit(ray, dist, normal)
	hit.Material = t.Material
	return hit
}

// hitDistance runs Möller-Trumbore and returns the ray parameter of the hit
func (t *Triangle) hitDistance(ray core.Ray) (float64, bool) {
	edge1 := t.V2.Subtract(t.V1)
	edge2 := t.V3.Subtract(t.V1)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -triangleEpsilon && a < triangleEpsilon {
		return 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V1)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := f * edge2.Dot(q)
	if dist <= triangleEpsilon {
		return 0, false
	}
	return dist, true
}

// barycentric returns the weights of V2, V3 and V1 for a point in the
// triangle plane. ok is false for degenerate triangles.
func (t *Triangle) barycentric(point core.Vec3) (b1, b2, b3 float64, ok bool) {
	v0 := t.V2.Subtract(t.V1)
	v1 := t.V3.Subtract(t.V1)
	v2 := point.Subtract(t.V1)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 0, 0, 0, false
	}

	b1 = (d11*d20 - d01*d21) / denom
	b2 = (d00*d21 - d01*d20) / denom
	b3 = 1 - b1 - b2
	return b1, b2, b3, true
}

// Intersections returns the Entry/Exit pair at the crossing distance
func (t *Triangle) Intersections(ray core.Ray) []Intersection {
	hit := t.Intersect(ray)
	if !hit.Hit() {
		return nil
	}
	return boundaryPair(hit)
}

// ClipsPoint reports whether the point lies behind the triangle (relative
// to its first vertex normal) and projects inside it
func (t *Triangle) ClipsPoint(point core.Vec3) bool {
	normal := t.FaceNormal()
	if normal.Dot(t.N1) < 0 {
		normal = normal.Negate()
	}

	toVertex := t.V1.Subtract(point)
	if toVertex.Dot(normal) <= 0 {
		return false
	}

	projected := point.Add(normal.Multiply(toVertex.Dot(normal)))
	b1, b2, b3, ok := t.barycentric(projected)
	if !ok {
		return false
	}
	return inUnit(b1) && inUnit(b2) && inUnit(b3)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// Translate moves the vertices by offset
func (t *Triangle) Translate(offset core.Vec3) {
	t.V1 = t.V1.Add(offset)
	t.V2 = t.V2.Add(offset)
	t.V3 = t.V3.Add(offset)
}

// Rotate turns vertices and normals around an axis through the origin
func (t *Triangle) Rotate(degrees float64, axis core.Vec3) {
	rotation := core.NewRotation(degrees, axis)
	t.V1 = rotation.TransformPoint(t.V1)
	t.V2 = rotation.TransformPoint(t.V2)
	t.V3 = rotation.TransformPoint(t.V3)
	t.N1 = rotation.TransformDirection(t.N1).Normalize()
	t.N2 = rotation.TransformDirection(t.N2).Normalize()
	t.N3 = rotation.TransformDirection(t.N3).Normalize()
}

// Scale stretches the vertices about the origin
func (t *Triangle) Scale(factors core.Vec3) {
	t.V1 = t.V1.MultiplyVec(factors)
	t.V2 = t.V2.MultiplyVec(factors)
	t.V3 = t.V3.MultiplyVec(factors)
}

// Clone returns a copy of the triangle
func (t *Triangle) Clone() Primitive {
	clone := *t
	return &clone
}

func (t *Triangle) primitive() {}
