package geometry

import (
	"github.com/df07/go-csg-raytracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal.
// The half-space behind the normal is the inside of the solid.
type Plane struct {
	Origin core.Vec3 // A point on the plane
	Normal core.Vec3 // Unit normal pointing out of the solid
	d      float64   // Plane constant: Normal·p + d = 0
}

// NewPlane creates a new plane
func NewPlane(origin, normal core.Vec3) *Plane {
	p := &Plane{
		Origin: origin,
		Normal: normal.Normalize(), // Ensure normal is normalized
	}
	p.update()
	return p
}

func (p *Plane) update() {
	p.d = -p.Normal.Dot(p.Origin)
}

// Intersect tests if a ray intersects with the plane
func (p *Plane) Intersect(ray core.Ray) Intersection {
	// Parallel rays never cross the plane
	denominator := p.Normal.Dot(ray.Direction)
	if denominator == 0 {
		return Intersection{}
	}

	t := -(p.d + p.Normal.Dot(ray.Origin)) / denominator
	if t <= 0 {
		return Intersection{}
	}

	return newHit(ray, t, p.Normal)
}

// Intersections returns the Entry/Exit pair at the crossing distance
func (p *Plane) Intersections(ray core.Ray) []Intersection {
	hit := p.Intersect(ray)
	if !hit.Hit() {
		return nil
	}
	return boundaryPair(hit)
}

// ClipsPoint reports whether the point is on the plane or behind it
func (p *Plane) ClipsPoint(point core.Vec3) bool {
	return p.Origin.Subtract(point).Dot(p.Normal) >= 0
}

// SignedDistance returns the distance of point from the plane, positive in
// front of the normal
func (p *Plane) SignedDistance(point core.Vec3) float64 {
	return p.Normal.Dot(point) + p.d
}

// ProjectPoint returns the orthogonal projection of point onto the plane
func (p *Plane) ProjectPoint(point core.Vec3) core.Vec3 {
	return point.Subtract(p.Normal.Multiply(p.SignedDistance(point)))
}

// Translate moves the plane by offset
func (p *Plane) Translate(offset core.Vec3) {
	p.Origin = p.Origin.Add(offset)
	p.update()
}

// Rotate turns the plane around an axis through the world origin
func (p *Plane) Rotate(degrees float64, axis core.Vec3) {
	rotation := core.NewRotation(degrees, axis)
	p.Origin = rotation.TransformPoint(p.Origin)
	p.Normal = rotation.TransformDirection(p.Normal).Normalize()
	p.update()
}

// Scale moves the plane origin by the scale factors. The orientation is kept.
func (p *Plane) Scale(factors core.Vec3) {
	p.Origin = p.Origin.MultiplyVec(factors)
	p.update()
}

// Clone returns a copy of the plane
func (p *Plane) Clone() Primitive {
	clone := *p
	return &clone
}

func (p *Plane) primitive() {}
