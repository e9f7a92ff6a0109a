package core

import "math"

// Ray represents a ray with an origin and a unit-length direction
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray. The direction is normalized so every distance
// parameter along a ray is a world-space length.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// ShiftOrigin moves the origin along the direction, used to step off a surface
func (r Ray) ShiftOrigin(epsilon float64) Ray {
	return Ray{Origin: r.At(epsilon), Direction: r.Direction}
}

// IsValid reports whether the ray has a usable direction.
// Refraction with total internal reflection yields an invalid ray.
func (r Ray) IsValid() bool {
	return !r.Direction.IsZero()
}

// Reflect mirrors the ray direction about normal, starting at point
func (r Ray) Reflect(point, normal Vec3) Ray {
	d := r.Direction
	return NewRay(point, d.Subtract(normal.Multiply(2*normal.Dot(d))))
}

// Refract bends the ray through a surface using Snell's law. n2 is the
// refraction index of the medium; out reports whether the ray is leaving it.
// Total internal reflection returns a ray with a zero direction.
func (r Ray) Refract(point, normal Vec3, n2 float64, out bool) Ray {
	d := r.Direction
	c1 := -normal.Dot(d)

	var n float64
	if out {
		n = n2
	} else {
		n = 1 / n2
	}

	k := 1 - n*n*(1-c1*c1)
	if k < 0 {
		return Ray{Origin: point}
	}

	return NewRay(point, d.Multiply(n).Add(normal.Multiply(n*c1-math.Sqrt(k))))
}

// Distribute jitters the ray direction inside a cone with the given full
// apex angle in degrees. Zero degrees returns the ray unchanged.
func (r Ray) Distribute(degrees float64, sampler Sampler) Ray {
	if degrees == 0 {
		return r
	}

	radius := math.Tan((degrees / 2) * (math.Pi / 180))
	target := SampleDiscPoint(r.At(1), r.Direction, radius, sampler)

	return NewRay(r.Origin, target.Subtract(r.Origin))
}
