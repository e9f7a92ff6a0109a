package geometry

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
)

// Quad is a plane bounded by an axis-aligned extent measured from the plane
// origin. Each component of Dimensions limits the offset along that axis:
// positive values allow [0, dim], negative values allow [dim, 0] and zero
// leaves the axis unbounded.
type Quad struct {
	Plane      Plane
	Dimensions core.Vec3
}

// NewQuad creates a bounded plane
func NewQuad(origin, normal, dimensions core.Vec3) *Quad {
	return &Quad{
		Plane:      *NewPlane(origin, normal),
		Dimensions: dimensions,
	}
}

// Intersect returns the plane crossing when it falls inside the extent
func (q *Quad) Intersect(ray core.Ray) Intersection {
	hit := q.Plane.Intersect(ray)
	if !hit.Hit() {
		return hit
	}

	if !q.withinExtent(hit.Point) {
		return Intersection{}
	}
	return hit
}

// Intersections returns the Entry/Exit pair at the crossing distance
func (q *Quad) Intersections(ray core.Ray) []Intersection {
	hit := q.Intersect(ray)
	if !hit.Hit() {
		return nil
	}
	return boundaryPair(hit)
}

// ClipsPoint reports whether the point is behind the plane and projects
// inside the extent
func (q *Quad) ClipsPoint(point core.Vec3) bool {
	if !q.Plane.ClipsPoint(point) {
		return false
	}
	return q.withinExtent(q.Plane.ProjectPoint(point))
}

// withinExtent tests the offset of a point on the plane against the bounds
func (q *Quad) withinExtent(point core.Vec3) bool {
	diff := point.Subtract(q.Plane.Origin)
	return withinAxis(diff.X, q.Dimensions.X) &&
		withinAxis(diff.Y, q.Dimensions.Y) &&
		withinAxis(diff.Z, q.Dimensions.Z)
}

func withinAxis(offset, dimension float64) bool {
	switch {
	case dimension < 0:
		return offset <= 0 && offset >= dimension
	case dimension > 0:
		return offset >= 0 && offset <= dimension
	default:
		return true
	}
}

// Translate moves the quad by offset
func (q *Quad) Translate(offset core.Vec3) {
	q.Plane.Translate(offset)
}

// Rotate turns the quad and its extent around an axis through the origin
func (q *Quad) Rotate(degrees float64, axis core.Vec3) {
	q.Plane.Rotate(degrees, axis)
	q.Dimensions = core.NewRotation(degrees, axis).TransformDirection(q.Dimensions)
}

// Scale stretches the quad about the world origin
func (q *Quad) Scale(factors core.Vec3) {
	q.Dimensions = q.Dimensions.MultiplyVec(factors)
	q.Plane.Scale(factors)
}

// Clone returns a copy of the quad
func (q *Quad) Clone() Primitive {
	clone := *q
	return &clone
}

func (q *Quad) primitive() {}
